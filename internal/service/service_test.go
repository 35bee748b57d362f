package service

import (
	"context"
	"testing"

	"levelup/internal/catalog"
	"levelup/internal/model"
	"levelup/internal/repository"
	"levelup/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestQuestService_Complete_Repository(t *testing.T) {
	questID := uuid.New()
	storeErr := errors.New("disk full")

	tests := []struct {
		name          string
		mockSetup     func(m *mocks.MockRepository)
		expectedError error
	}{
		{
			name: "Quest not found",
			mockSetup: func(m *mocks.MockRepository) {
				m.On("GetInstance", mock.Anything, questID).Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrNotFound,
		},
		{
			name: "Lookup failure is passed through",
			mockSetup: func(m *mocks.MockRepository) {
				m.On("GetInstance", mock.Anything, questID).Return(nil, storeErr)
			},
			expectedError: storeErr,
		},
		{
			name: "Expired quest",
			mockSetup: func(m *mocks.MockRepository) {
				m.On("GetInstance", mock.Anything, questID).Return(&model.QuestInstance{
					ID:     questID,
					Status: model.QuestStatusExpired,
				}, nil)
			},
			expectedError: ErrInvalidState,
		},
		{
			name: "Update failure aborts completion",
			mockSetup: func(m *mocks.MockRepository) {
				m.On("GetInstance", mock.Anything, questID).Return(&model.QuestInstance{
					ID:           questID,
					Type:         model.QuestTypeDaily,
					Status:       model.QuestStatusActive,
					Progress:     1,
					ProgressGoal: 1,
				}, nil)
				m.On("UpdateInstance", mock.Anything, mock.MatchedBy(func(q *model.QuestInstance) bool {
					return q.Status == model.QuestStatusCompleted
				})).Return(storeErr)
			},
			expectedError: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockRepository{}
			tt.mockSetup(mockRepo)
			svc := NewService(mockRepo, catalog.Static{C: testCatalog()}, Options{})

			res, err := svc.Quests.Complete(context.Background(), questID)

			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestEconomyService_UnlockClass_Repository(t *testing.T) {
	mockRepo := &mocks.MockRepository{}
	svc := NewService(mockRepo, catalog.Static{C: testCatalog()}, Options{})

	mockRepo.On("GetClass", mock.Anything, "Bard").
		Return(&model.CharacterClass{ID: "Bard", Level: 1, DailyQuestSlots: 2}, nil)
	mockRepo.On("GetUser", mock.Anything, model.PlayerID).
		Return(&model.User{ID: model.PlayerID, Gold: 199}, nil)

	_, err := svc.Economy.UnlockClass(context.Background(), "Bard")

	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	mockRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateClass", mock.Anything, mock.Anything)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&mocks.MockRepository{}, catalog.Static{}, Options{})

	c := svc.Quests.core
	assert.NotNil(t, c.clock)
	assert.NotNil(t, c.loc)
	assert.Equal(t, DefaultWeeklyRules, c.weekly)
	assert.IsType(t, NopNotifier{}, c.notifier)
	assert.Same(t, c, svc.Maintenance.core)
}
