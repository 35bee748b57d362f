package service

import (
	"context"
	"testing"

	"levelup/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classIDs(classes []*model.CharacterClass) []string {
	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}
	return ids
}

func TestClassService_SortedClasses(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	env.setUser(t, func(u *model.User) {
		u.ClassOrder = []string{"Bard", "Mage", model.WeeklyOrderEntry, "Warrior", "Ranger"}
	})

	home, err := env.svc.Classes.SortedClasses(ctx, ViewHome)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mage", "Warrior", "Ranger", "Bard"}, classIDs(home))

	quests, err := env.svc.Classes.SortedClasses(ctx, ViewQuests)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mage", "Warrior", "Ranger"}, classIDs(quests))

	pos, err := env.svc.Classes.WeeklyPosition(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)
}

func TestClassService_SortedClassesUnknownLast(t *testing.T) {
	env := seeded(t)

	env.setUser(t, func(u *model.User) { u.ClassOrder = []string{"Ranger"} })

	home, err := env.svc.Classes.SortedClasses(context.Background(), ViewHome)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ranger", "Warrior", "Mage", "Bard"}, classIDs(home))

	pos, err := env.svc.Classes.WeeklyPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestClassService_UpdateClassOrder(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name          string
		order         []string
		expected      []string
		expectedError error
	}{
		{
			name:     "Partial order is completed",
			order:    []string{model.WeeklyOrderEntry, "Mage"},
			expected: []string{model.WeeklyOrderEntry, "Mage", "Warrior", "Ranger", "Bard"},
		},
		{
			name:     "Full order",
			order:    []string{"Bard", "Ranger", "Mage", "Warrior", model.WeeklyOrderEntry},
			expected: []string{"Bard", "Ranger", "Mage", "Warrior", model.WeeklyOrderEntry},
		},
		{
			name:          "Unknown class",
			order:         []string{"Pirate"},
			expectedError: ErrInvalidClassOrder,
		},
		{
			name:          "Duplicate class",
			order:         []string{"Mage", "Mage"},
			expectedError: ErrInvalidClassOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, err := env.svc.Classes.UpdateClassOrder(ctx, tt.order)
			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored)

			order, err := env.svc.Classes.ClassOrder(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}
