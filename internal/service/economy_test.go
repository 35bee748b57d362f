package service

import (
	"context"
	"testing"

	"levelup/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEconomyService_UnlockClass(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	_, err := env.svc.Economy.UnlockClass(ctx, "Bard")
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	assert.False(t, env.class(t, "Bard").IsUnlocked)
	assert.Equal(t, 100, env.user(t).Gold)

	env.setUser(t, func(u *model.User) { u.Gold = 500 })

	bard, err := env.svc.Economy.UnlockClass(ctx, "Bard")
	require.NoError(t, err)
	assert.True(t, bard.IsUnlocked)
	assert.NotNil(t, bard.UnlockedAt)
	assert.Equal(t, 300, env.user(t).Gold)
	assert.Len(t, env.activeDaily(t, "Bard"), model.BaseDailyQuestSlots)
	assert.Equal(t, 1, env.notifier.count(model.EventClassUnlocked))

	_, err = env.svc.Economy.UnlockClass(ctx, "Bard")
	assert.True(t, errors.Is(err, ErrAlreadyUnlocked))
	assert.Equal(t, 300, env.user(t).Gold)

	_, err = env.svc.Economy.UnlockClass(ctx, "Necromancer")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEconomyService_UnlockSlot(t *testing.T) {
	tests := []struct {
		name          string
		class         string
		slot          model.Slot
		setup         func(env *testEnv)
		expectedError error
		expectedGold  int
		expectedSlots int
	}{
		{
			name:          "Locked class",
			class:         "Bard",
			slot:          model.Slot3,
			expectedError: ErrPreconditionUnmet,
			expectedGold:  100,
		},
		{
			name:          "Underleveled",
			class:         "Warrior",
			slot:          model.Slot3,
			expectedError: ErrPreconditionUnmet,
			expectedGold:  100,
		},
		{
			name:  "Already unlocked",
			class: "Warrior",
			slot:  model.Slot3,
			setup: func(env *testEnv) {
				env.setClass(t, "Warrior", func(c *model.CharacterClass) {
					c.Level = 5
					c.Slot3Unlocked = true
					c.DailyQuestSlots = 3
				})
			},
			expectedError: ErrAlreadyUnlocked,
			expectedGold:  100,
		},
		{
			name:  "Underfunded",
			class: "Warrior",
			slot:  model.Slot5,
			setup: func(env *testEnv) {
				env.setClass(t, "Warrior", func(c *model.CharacterClass) { c.Level = 15 })
				env.setUser(t, func(u *model.User) { u.Gold = 149 })
			},
			expectedError: ErrInsufficientFunds,
			expectedGold:  149,
		},
		{
			name:          "Unknown slot",
			class:         "Warrior",
			slot:          model.Slot(9),
			expectedError: ErrPreconditionUnmet,
			expectedGold:  100,
		},
		{
			name:  "Success",
			class: "Warrior",
			slot:  model.Slot3,
			setup: func(env *testEnv) {
				env.setClass(t, "Warrior", func(c *model.CharacterClass) { c.Level = 5 })
			},
			expectedGold:  50,
			expectedSlots: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := seeded(t)
			if tt.setup != nil {
				tt.setup(env)
			}

			class, err := env.svc.Economy.UnlockSlot(context.Background(), tt.class, tt.slot)

			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				assert.Nil(t, class)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedSlots, class.DailyQuestSlots)
				assert.True(t, class.SlotUnlocked(tt.slot))
			}
			assert.Equal(t, tt.expectedGold, env.user(t).Gold)
		})
	}
}

func TestEconomyService_SlotAddsDailyQuest(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	env.setClass(t, "Warrior", func(c *model.CharacterClass) { c.Level = 5 })
	_, err := env.svc.Economy.UnlockSlot(ctx, "Warrior", model.Slot3)
	require.NoError(t, err)

	require.NoError(t, env.svc.Generator.GenerateDailyForClass(ctx, "Warrior"))

	active := env.activeDaily(t, "Warrior")
	assert.Len(t, active, 3)
	expired := env.quests(t, model.InstanceFilter{
		Type:     model.QuestTypeDaily,
		Class:    "Warrior",
		Statuses: []model.QuestStatus{model.QuestStatusExpired},
	})
	assert.Len(t, expired, 2)
}

func TestEconomyService_NextRerollCost(t *testing.T) {
	env := seeded(t)

	cost, err := env.svc.Economy.NextRerollCost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, cost)

	env.setUser(t, func(u *model.User) { u.DailyRerollCount = 7 })
	cost, err = env.svc.Economy.NextRerollCost(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1600, cost)
}
