package repository

import (
	"context"
	"sort"
	"sync"

	"levelup/internal/model"

	"github.com/google/uuid"
)

// Memory is a process-local store with the same contract as Repository.
// Transactions hold the store lock for their whole duration and restore a
// snapshot when the callback fails.
type Memory struct {
	mu        sync.Mutex
	users     map[string]model.User
	classes   map[string]model.CharacterClass
	templates map[uuid.UUID]model.QuestTemplate
	instances map[uuid.UUID]model.QuestInstance
	// insertion order, used for stable listing
	templateOrder []uuid.UUID
	instanceOrder []uuid.UUID
}

func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

func (m *Memory) reset() {
	m.users = map[string]model.User{}
	m.classes = map[string]model.CharacterClass{}
	m.templates = map[uuid.UUID]model.QuestTemplate{}
	m.instances = map[uuid.UUID]model.QuestInstance{}
	m.templateOrder = nil
	m.instanceOrder = nil
}

type memTxKey struct{}

func (m *Memory) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) == m {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) Transaction(ctx context.Context, t func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) == m {
		return t(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.restore(snap)
			panic(p)
		}
	}()

	if err := t(context.WithValue(ctx, memTxKey{}, m)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	users         map[string]model.User
	classes       map[string]model.CharacterClass
	templates     map[uuid.UUID]model.QuestTemplate
	instances     map[uuid.UUID]model.QuestInstance
	templateOrder []uuid.UUID
	instanceOrder []uuid.UUID
}

func (m *Memory) snapshot() memSnapshot {
	s := memSnapshot{
		users:         make(map[string]model.User, len(m.users)),
		classes:       make(map[string]model.CharacterClass, len(m.classes)),
		templates:     make(map[uuid.UUID]model.QuestTemplate, len(m.templates)),
		instances:     make(map[uuid.UUID]model.QuestInstance, len(m.instances)),
		templateOrder: append([]uuid.UUID(nil), m.templateOrder...),
		instanceOrder: append([]uuid.UUID(nil), m.instanceOrder...),
	}
	for k, v := range m.users {
		v.ClassOrder = append([]string(nil), v.ClassOrder...)
		s.users[k] = v
	}
	for k, v := range m.classes {
		s.classes[k] = v
	}
	for k, v := range m.templates {
		s.templates[k] = v
	}
	for k, v := range m.instances {
		s.instances[k] = v
	}
	return s
}

func (m *Memory) restore(s memSnapshot) {
	m.users = s.users
	m.classes = s.classes
	m.templates = s.templates
	m.instances = s.instances
	m.templateOrder = s.templateOrder
	m.instanceOrder = s.instanceOrder
}

func (m *Memory) GetUser(ctx context.Context, id string) (*model.User, error) {
	defer m.lock(ctx)()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.ClassOrder = append([]string(nil), u.ClassOrder...)
	return &u, nil
}

func (m *Memory) CreateUser(ctx context.Context, user *model.User) error {
	defer m.lock(ctx)()

	if _, ok := m.users[user.ID]; ok {
		return ErrAlreadyExists
	}
	u := *user
	u.ClassOrder = append([]string(nil), user.ClassOrder...)
	m.users[u.ID] = u
	return nil
}

func (m *Memory) UpdateUser(ctx context.Context, user *model.User) error {
	defer m.lock(ctx)()

	old, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	u := *user
	u.CreatedAt = old.CreatedAt
	u.ClassOrder = append([]string(nil), user.ClassOrder...)
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetClass(ctx context.Context, id string) (*model.CharacterClass, error) {
	defer m.lock(ctx)()

	c, ok := m.classes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) ListClasses(ctx context.Context) ([]*model.CharacterClass, error) {
	defer m.lock(ctx)()

	out := make([]*model.CharacterClass, 0, len(m.classes))
	for _, c := range m.classes {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortIndex != out[j].SortIndex {
			return out[i].SortIndex < out[j].SortIndex
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) CreateClass(ctx context.Context, class *model.CharacterClass) error {
	defer m.lock(ctx)()

	if _, ok := m.classes[class.ID]; ok {
		return ErrAlreadyExists
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *Memory) UpdateClass(ctx context.Context, class *model.CharacterClass) error {
	defer m.lock(ctx)()

	if _, ok := m.classes[class.ID]; !ok {
		return ErrNotFound
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *Memory) GetTemplate(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error) {
	defer m.lock(ctx)()

	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *Memory) ListTemplates(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error) {
	defer m.lock(ctx)()

	var out []*model.QuestTemplate
	for _, id := range m.templateOrder {
		t, ok := m.templates[id]
		if !ok {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Class != "" && t.Class != filter.Class {
			continue
		}
		if filter.EnabledOnly && !t.Enabled {
			continue
		}
		if filter.CustomOnly && !t.IsCustom {
			continue
		}
		out = append(out, &t)
	}
	return out, nil
}

func (m *Memory) CreateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	defer m.lock(ctx)()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if _, ok := m.templates[t.ID]; ok {
		return ErrAlreadyExists
	}
	m.templates[t.ID] = *t
	m.templateOrder = append(m.templateOrder, t.ID)
	return nil
}

func (m *Memory) UpdateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	defer m.lock(ctx)()

	old, ok := m.templates[t.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *t
	updated.CreatedAt = old.CreatedAt
	m.templates[t.ID] = updated
	return nil
}

func (m *Memory) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	defer m.lock(ctx)()

	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	for i, tid := range m.templateOrder {
		if tid == id {
			m.templateOrder = append(m.templateOrder[:i:i], m.templateOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) GetInstance(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error) {
	defer m.lock(ctx)()

	q, ok := m.instances[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (m *Memory) ListInstances(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error) {
	defer m.lock(ctx)()

	var out []*model.QuestInstance
	for _, id := range m.instanceOrder {
		q := m.instances[id]
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		if filter.Class != "" && q.Class != filter.Class {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, q.Status) {
			continue
		}
		out = append(out, &q)
	}
	return out, nil
}

func (m *Memory) CreateInstance(ctx context.Context, q *model.QuestInstance) error {
	defer m.lock(ctx)()

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if _, ok := m.instances[q.ID]; ok {
		return ErrAlreadyExists
	}
	m.instances[q.ID] = *q
	m.instanceOrder = append(m.instanceOrder, q.ID)
	return nil
}

func (m *Memory) UpdateInstance(ctx context.Context, q *model.QuestInstance) error {
	defer m.lock(ctx)()

	old, ok := m.instances[q.ID]
	if !ok {
		return ErrNotFound
	}
	updated := *q
	updated.CreatedAt = old.CreatedAt
	m.instances[q.ID] = updated
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	defer m.lock(ctx)()

	m.reset()
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func hasStatus(statuses []model.QuestStatus, s model.QuestStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}
