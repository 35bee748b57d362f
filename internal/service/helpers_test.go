package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"levelup/internal/catalog"
	"levelup/internal/model"
	"levelup/internal/repository"

	"github.com/stretchr/testify/require"
)

// wednesday is 2026-10-14 10:00 UTC.
var wednesday = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// fixedRand always picks index 0.
type fixedRand struct{}

func (fixedRand) Intn(int) int { return 0 }

// lastRand always picks the last index.
type lastRand struct{}

func (lastRand) Intn(n int) int { return n - 1 }

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (n *recordingNotifier) Publish(e model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) count(typ model.EventType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var c int
	for _, e := range n.events {
		if e.Type == typ {
			c++
		}
	}
	return c
}

func intPtr(n int) *int {
	return &n
}

func daily(class, title string, xp, gold int, requirement string) model.TemplateDefinition {
	return model.TemplateDefinition{
		Title:       title,
		Description: title + " description",
		Type:        string(model.QuestTypeDaily),
		Class:       class,
		BaseXP:      xp,
		BaseGold:    gold,
		Enabled:     true,
		Requirement: requirement,
	}
}

func testCatalog() *model.Catalog {
	return &model.Catalog{
		Classes: []model.ClassConfig{
			{ID: "Warrior", Color: "#c0392b"},
			{ID: "Ranger", Color: "#27ae60"},
			{ID: "Mage", Color: "#2980b9"},
			{ID: "Bard", Color: "#8e44ad"},
		},
		UserDefaults: model.UserDefaults{
			Gold:           100,
			StarterClasses: []string{"Warrior", "Ranger", "Mage"},
			ClassOrder:     []string{"Warrior", "Ranger", "Mage", "Bard", model.WeeklyOrderEntry},
		},
		Templates: map[string][]model.TemplateDefinition{
			"Warrior": {
				daily("Warrior", "Push-ups", 20, 10, "1"),
				daily("Warrior", "Plank", 25, 10, "2"),
				daily("Warrior", "Squats", 30, 15, "3"),
			},
			"Ranger": {
				daily("Ranger", "Walk", 20, 10, "1"),
				daily("Ranger", "Run", 30, 15, "1"),
				daily("Ranger", "Stretch", 10, 5, "1"),
			},
			"Mage": {
				daily("Mage", "Read", 20, 10, "1"),
				daily("Mage", "Write", 25, 10, "1"),
				daily("Mage", "Study", 30, 15, "1"),
			},
			"Bard": {
				daily("Bard", "Sing", 20, 10, "1"),
				daily("Bard", "Play", 20, 10, "1"),
				daily("Bard", "Compose", 20, 10, "1"),
			},
			"Weekly": {
				{
					Title:       "Deep clean",
					Description: "Clean the whole flat",
					Type:        string(model.QuestTypeWeekly),
					Class:       model.WeeklyOrderEntry,
					BaseXP:      100,
					BaseGold:    50,
					Enabled:     true,
					Requirement: "1",
				},
			},
		},
	}
}

type testEnv struct {
	svc      *Service
	repo     *repository.Memory
	clock    *testClock
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, testCatalog(), fixedRand{})
}

func newTestEnvWith(t *testing.T, c *model.Catalog, r Rand) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:     repository.NewMemory(),
		clock:    &testClock{now: wednesday},
		notifier: &recordingNotifier{},
	}
	env.svc = NewService(env.repo, catalog.Static{C: c}, Options{
		Clock:    env.clock.Now,
		Rand:     r,
		Location: time.UTC,
		Notifier: env.notifier,
	})
	return env
}

// seeded returns an initialized environment.
func seeded(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	require.NoError(t, env.svc.Maintenance.EnsureInitialized(context.Background()))
	return env
}

func (e *testEnv) user(t *testing.T) *model.User {
	t.Helper()
	u, err := e.repo.GetUser(context.Background(), model.PlayerID)
	require.NoError(t, err)
	return u
}

func (e *testEnv) class(t *testing.T, id string) *model.CharacterClass {
	t.Helper()
	c, err := e.repo.GetClass(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (e *testEnv) setUser(t *testing.T, mutate func(u *model.User)) {
	t.Helper()
	u := e.user(t)
	mutate(u)
	require.NoError(t, e.repo.UpdateUser(context.Background(), u))
}

func (e *testEnv) setClass(t *testing.T, id string, mutate func(c *model.CharacterClass)) {
	t.Helper()
	c := e.class(t, id)
	mutate(c)
	require.NoError(t, e.repo.UpdateClass(context.Background(), c))
}

func (e *testEnv) quests(t *testing.T, filter model.InstanceFilter) []*model.QuestInstance {
	t.Helper()
	qs, err := e.repo.ListInstances(context.Background(), filter)
	require.NoError(t, err)
	return qs
}

func (e *testEnv) activeDaily(t *testing.T, class string) []*model.QuestInstance {
	t.Helper()
	return e.quests(t, model.InstanceFilter{
		Type:     model.QuestTypeDaily,
		Class:    class,
		Statuses: []model.QuestStatus{model.QuestStatusActive},
	})
}

// finish drives a quest to its goal.
func (e *testEnv) finish(t *testing.T, q *model.QuestInstance) {
	t.Helper()
	_, err := e.svc.Quests.UpdateProgress(context.Background(), q.ID, q.ProgressGoal)
	require.NoError(t, err)
}
