package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"levelup/internal/model"
	"levelup/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidState       = errors.New("operation not valid for current state")
	ErrIncompleteProgress = errors.New("quest progress not completed")
	ErrInsufficientFunds  = errors.New("insufficient gold")
	ErrAlreadyUnlocked    = errors.New("already unlocked")
	ErrPreconditionUnmet  = errors.New("unlock requirements not met")
	ErrNoAlternatives     = errors.New("no alternative quests available to reroll to")
	ErrIncompleteBundle   = errors.New("weekly bundle not completed")
	ErrInvalidTemplate    = errors.New("invalid quest template")
	ErrInvalidClassOrder  = errors.New("invalid class order")
)

type Transactor interface {
	Transaction(ctx context.Context, t func(ctx context.Context) error) error
}

type UserRepository interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
}

type ClassRepository interface {
	GetClass(ctx context.Context, id string) (*model.CharacterClass, error)
	ListClasses(ctx context.Context) ([]*model.CharacterClass, error)
	CreateClass(ctx context.Context, class *model.CharacterClass) error
	UpdateClass(ctx context.Context, class *model.CharacterClass) error
}

type TemplateRepository interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error)
	ListTemplates(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error)
	CreateTemplate(ctx context.Context, t *model.QuestTemplate) error
	UpdateTemplate(ctx context.Context, t *model.QuestTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

type InstanceRepository interface {
	GetInstance(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error)
	ListInstances(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error)
	CreateInstance(ctx context.Context, q *model.QuestInstance) error
	UpdateInstance(ctx context.Context, q *model.QuestInstance) error
}

type Repository interface {
	Transactor
	UserRepository
	ClassRepository
	TemplateRepository
	InstanceRepository
	Clear(ctx context.Context) error
}

// CatalogSource provides the static seed data.
type CatalogSource interface {
	Catalog() (*model.Catalog, error)
}

type Notifier interface {
	Publish(e model.Event)
}

type NopNotifier struct{}

func (NopNotifier) Publish(model.Event) {}

// Rand is the random source used for template selection.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int {
	return rand.Intn(n)
}

type WeeklyRules struct {
	LevelThreshold int
	MinClasses     int
}

var DefaultWeeklyRules = WeeklyRules{LevelThreshold: 3, MinClasses: 3}

type Options struct {
	Clock    func() time.Time
	Rand     Rand
	Location *time.Location
	Notifier Notifier
	Weekly   WeeklyRules
}

// core is the state shared by every service: the store, the writer lock
// that serializes mutations, and the injected clock and random source.
type core struct {
	repo     Repository
	clock    func() time.Time
	rand     Rand
	loc      *time.Location
	notifier Notifier
	weekly   WeeklyRules
	mu       sync.Mutex
}

func newCore(repo Repository, opts Options) *core {
	c := &core{
		repo:     repo,
		clock:    opts.Clock,
		rand:     opts.Rand,
		loc:      opts.Location,
		notifier: opts.Notifier,
		weekly:   opts.Weekly,
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.rand == nil {
		c.rand = globalRand{}
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.notifier == nil {
		c.notifier = NopNotifier{}
	}
	if c.weekly.LevelThreshold <= 0 {
		c.weekly.LevelThreshold = DefaultWeeklyRules.LevelThreshold
	}
	if c.weekly.MinClasses <= 0 {
		c.weekly.MinClasses = DefaultWeeklyRules.MinClasses
	}
	return c
}

func (c *core) now() time.Time {
	return c.clock().In(c.loc)
}

// write runs t under the writer lock inside a store transaction and
// publishes the events it collected once the transaction has committed.
func (c *core) write(ctx context.Context, t func(ctx context.Context, ev *events) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := &events{}
	err := c.repo.Transaction(ctx, func(ctx context.Context) error {
		return t(ctx, ev)
	})
	if err != nil {
		return err
	}

	for _, e := range ev.list {
		c.notifier.Publish(e)
	}
	return nil
}

type events struct {
	list []model.Event
}

func (e *events) add(ev model.Event) {
	e.list = append(e.list, ev)
}

func (c *core) user(ctx context.Context) (*model.User, error) {
	user, err := c.repo.GetUser(ctx, model.PlayerID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (c *core) class(ctx context.Context, id string) (*model.CharacterClass, error) {
	class, err := c.repo.GetClass(ctx, id)
	if err != nil {
		return nil, notFound(err, "class "+id)
	}
	return class, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "failed to load %s", what)
}

// Service groups the engine's components around one shared store and writer lock.
type Service struct {
	Quests      *QuestService
	Economy     *EconomyService
	Weekly      *WeeklyService
	Templates   *TemplateService
	Classes     *ClassService
	Generator   *Generator
	Maintenance *Maintenance
}

func NewService(repo Repository, catalog CatalogSource, opts Options) *Service {
	c := newCore(repo, opts)
	gen := &Generator{core: c}
	templates := &TemplateService{core: c, catalog: catalog}

	return &Service{
		Quests:      &QuestService{core: c, gen: gen},
		Economy:     &EconomyService{core: c, gen: gen},
		Weekly:      &WeeklyService{core: c, gen: gen},
		Templates:   templates,
		Classes:     &ClassService{core: c},
		Generator:   gen,
		Maintenance: &Maintenance{core: c, gen: gen, templates: templates, catalog: catalog},
	}
}

type QuestServiceI interface {
	GetQuest(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error)
	ListQuests(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error)
	CurrentQuests(ctx context.Context, typ model.QuestType) ([]*model.QuestInstance, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, value int) (*model.QuestInstance, error)
	Increment(ctx context.Context, id uuid.UUID, amount int) (*model.QuestInstance, error)
	Decrement(ctx context.Context, id uuid.UUID, amount int) (*model.QuestInstance, error)
	Complete(ctx context.Context, id uuid.UUID) (*CompletionResult, error)
	Reroll(ctx context.Context, id uuid.UUID) (*RerollResult, error)
}

type EconomyServiceI interface {
	NextRerollCost(ctx context.Context) (int, error)
	UnlockClass(ctx context.Context, classID string) (*model.CharacterClass, error)
	UnlockSlot(ctx context.Context, classID string, slot model.Slot) (*model.CharacterClass, error)
}

type WeeklyServiceI interface {
	IsEligible(ctx context.Context) (bool, error)
	Status(ctx context.Context) (*WeeklyStatus, error)
	Generate(ctx context.Context) (bool, error)
	Collect(ctx context.Context) (*CollectResult, error)
}

type TemplateServiceI interface {
	Get(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error)
	List(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error)
	Search(ctx context.Context, query string, filter model.TemplateFilter) ([]*model.QuestTemplate, error)
	CreateCustom(ctx context.Context, in TemplateInput) (*model.QuestTemplate, error)
	UpdateCustom(ctx context.Context, id uuid.UUID, in TemplateInput) (*model.QuestTemplate, error)
	DeleteCustom(ctx context.Context, id uuid.UUID) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.QuestTemplate, error)
	Sync(ctx context.Context) (int, error)
}

type ClassServiceI interface {
	GetUser(ctx context.Context) (*model.User, error)
	GetClass(ctx context.Context, id string) (*model.CharacterClass, error)
	ListClasses(ctx context.Context) ([]*model.CharacterClass, error)
	SortedClasses(ctx context.Context, view ClassView) ([]*model.CharacterClass, error)
	ClassOrder(ctx context.Context) ([]string, error)
	WeeklyPosition(ctx context.Context) (int, error)
	UpdateClassOrder(ctx context.Context, order []string) ([]string, error)
}

type MaintenanceI interface {
	EnsureInitialized(ctx context.Context) error
	Tick(ctx context.Context) (*TickResult, error)
	Reset(ctx context.Context) error
}
