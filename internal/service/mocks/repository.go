package mocks

import (
	"context"

	"levelup/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of the service storage contract.
// Transaction runs the callback directly.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Transaction(ctx context.Context, t func(ctx context.Context) error) error {
	return t(ctx)
}

func (m *MockRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) UpdateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetClass(ctx context.Context, id string) (*model.CharacterClass, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CharacterClass), args.Error(1)
}

func (m *MockRepository) ListClasses(ctx context.Context) ([]*model.CharacterClass, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.CharacterClass), args.Error(1)
}

func (m *MockRepository) CreateClass(ctx context.Context, class *model.CharacterClass) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockRepository) UpdateClass(ctx context.Context, class *model.CharacterClass) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestTemplate), args.Error(1)
}

func (m *MockRepository) ListTemplates(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestTemplate), args.Error(1)
}

func (m *MockRepository) CreateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) UpdateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetInstance(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestInstance), args.Error(1)
}

func (m *MockRepository) ListInstances(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuestInstance), args.Error(1)
}

func (m *MockRepository) CreateInstance(ctx context.Context, q *model.QuestInstance) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRepository) UpdateInstance(ctx context.Context, q *model.QuestInstance) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
