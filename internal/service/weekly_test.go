package service

import (
	"context"
	"testing"
	"time"

	"levelup/internal/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEligible(t *testing.T, env *testEnv) {
	t.Helper()
	for _, id := range []string{"Warrior", "Ranger", "Mage"} {
		env.setClass(t, id, func(c *model.CharacterClass) { c.Level, c.XPToNextLevel = 3, 300 })
	}
}

// eligibleWithBundle returns a seeded environment with a generated bundle.
func eligibleWithBundle(t *testing.T) *testEnv {
	t.Helper()
	env := seeded(t)
	makeEligible(t, env)
	generated, err := env.svc.Weekly.Generate(context.Background())
	require.NoError(t, err)
	require.True(t, generated)
	return env
}

func addWeekly(t *testing.T, env *testEnv, gold, xp int, status model.QuestStatus) {
	t.Helper()
	now := env.clock.Now()
	require.NoError(t, env.repo.CreateInstance(context.Background(), &model.QuestInstance{
		ID:           uuid.New(),
		Type:         model.QuestTypeWeekly,
		TemplateType: model.QuestTypeDaily,
		Class:        "Warrior",
		Title:        "Bundle quest",
		ProgressGoal: 1,
		GoldReward:   gold,
		XPReward:     xp,
		Status:       status,
		CreatedAt:    now,
		ExpiresAt:    NextWeeklyReset(now, time.UTC),
	}))
}

func TestWeeklyService_IsEligible(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	eligible, err := env.svc.Weekly.IsEligible(ctx)
	require.NoError(t, err)
	assert.False(t, eligible)

	env.setClass(t, "Warrior", func(c *model.CharacterClass) { c.Level = 3 })
	env.setClass(t, "Ranger", func(c *model.CharacterClass) { c.Level = 4 })
	eligible, err = env.svc.Weekly.IsEligible(ctx)
	require.NoError(t, err)
	assert.False(t, eligible)

	// A locked class does not count even at level.
	env.setClass(t, "Bard", func(c *model.CharacterClass) { c.Level = 9 })
	eligible, err = env.svc.Weekly.IsEligible(ctx)
	require.NoError(t, err)
	assert.False(t, eligible)

	env.setClass(t, "Mage", func(c *model.CharacterClass) { c.Level = 3 })
	eligible, err = env.svc.Weekly.IsEligible(ctx)
	require.NoError(t, err)
	assert.True(t, eligible)
}

func TestWeeklyService_Generate(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	generated, err := env.svc.Weekly.Generate(ctx)
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Empty(t, env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly}))

	makeEligible(t, env)
	generated, err = env.svc.Weekly.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, generated)

	bundle := env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly})
	require.Len(t, bundle, WeeklyBundleSize)

	var fromWeekly int
	for _, q := range bundle {
		assert.Equal(t, model.QuestStatusActive, q.Status)
		assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), q.ExpiresAt)
		assert.Equal(t, 3, q.ClassLevel)
		if q.TemplateType == model.QuestTypeWeekly {
			fromWeekly++
		}
	}
	assert.Equal(t, 1, fromWeekly)
	assert.NotNil(t, env.user(t).LastWeeklyGenerated)

	generated, err = env.svc.Weekly.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, generated)

	active := env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly, Statuses: []model.QuestStatus{model.QuestStatusActive}})
	expired := env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly, Statuses: []model.QuestStatus{model.QuestStatusExpired}})
	assert.Len(t, active, WeeklyBundleSize)
	assert.Len(t, expired, WeeklyBundleSize)
}

func TestWeeklyService_RegenerateDropsCompletedBundleQuests(t *testing.T) {
	env := eligibleWithBundle(t)
	ctx := context.Background()

	status, err := env.svc.Weekly.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status.Quests, WeeklyBundleSize)

	done := status.Quests[0]
	env.finish(t, done)
	_, err = env.svc.Quests.Complete(ctx, done.ID)
	require.NoError(t, err)

	generated, err := env.svc.Weekly.Generate(ctx)
	require.NoError(t, err)
	require.True(t, generated)

	status, err = env.svc.Weekly.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, status.Quests, WeeklyBundleSize)
	assert.Equal(t, 0, status.Completed)
	for _, q := range status.Quests {
		assert.NotEqual(t, done.ID, q.ID)
	}

	stored, err := env.svc.Quests.GetQuest(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuestStatusExpired, stored.Status)
}

func TestWeeklyService_GenerateWithoutWeeklyTemplates(t *testing.T) {
	c := testCatalog()
	delete(c.Templates, "Weekly")
	env := newTestEnvWith(t, c, fixedRand{})
	ctx := context.Background()
	require.NoError(t, env.svc.Maintenance.EnsureInitialized(ctx))
	makeEligible(t, env)

	_, err := env.svc.Weekly.Generate(ctx)
	require.NoError(t, err)

	bundle := env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly})
	require.Len(t, bundle, WeeklyBundleSize)
	for _, q := range bundle {
		assert.Equal(t, model.QuestTypeDaily, q.TemplateType)
	}
}

func TestWeeklyService_Collect(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	addWeekly(t, env, 10, 30, model.QuestStatusCompleted)
	addWeekly(t, env, 20, 60, model.QuestStatusCompleted)

	res, err := env.svc.Weekly.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 90, res.GoldAwarded)
	assert.Equal(t, 90, res.XPAwardedPerClass)
	assert.Equal(t, 270, res.TotalXPDistributed)
	assert.Empty(t, res.LevelUps)

	assert.Equal(t, 190, env.user(t).Gold)
	for _, id := range []string{"Warrior", "Ranger", "Mage"} {
		assert.Equal(t, 90, env.class(t, id).CurrentXP)
	}
	assert.Equal(t, 0, env.class(t, "Bard").CurrentXP)

	collected := env.quests(t, model.InstanceFilter{Type: model.QuestTypeWeekly, Statuses: []model.QuestStatus{model.QuestStatusCollected}})
	assert.Len(t, collected, 2)

	_, err = env.svc.Weekly.Collect(ctx)
	assert.True(t, errors.Is(err, ErrIncompleteBundle))
	assert.Equal(t, 190, env.user(t).Gold)
}

func TestWeeklyService_CollectFloorsXPSplit(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	env.setClass(t, "Bard", func(c *model.CharacterClass) { c.IsUnlocked = true })
	addWeekly(t, env, 1, 10, model.QuestStatusCompleted)
	before := env.user(t).TotalXP

	res, err := env.svc.Weekly.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, res.GoldAwarded)
	assert.Equal(t, 7, res.XPAwardedPerClass)
	assert.Equal(t, 28, res.TotalXPDistributed)
	// the remainder of 30 over four classes is not credited anywhere
	assert.Equal(t, before+28, env.user(t).TotalXP)
}

func TestWeeklyService_CollectLevelsUp(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	addWeekly(t, env, 0, 100, model.QuestStatusCompleted)

	res, err := env.svc.Weekly.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, 100, res.XPAwardedPerClass)
	assert.Len(t, res.LevelUps, 3)
	assert.Equal(t, 2, env.class(t, "Mage").Level)
	assert.Equal(t, 3, env.notifier.count(model.EventLevelUp))
}

func TestWeeklyService_CollectIncompleteBundle(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	_, err := env.svc.Weekly.Collect(ctx)
	assert.True(t, errors.Is(err, ErrIncompleteBundle))

	addWeekly(t, env, 10, 30, model.QuestStatusCompleted)
	addWeekly(t, env, 20, 60, model.QuestStatusActive)

	_, err = env.svc.Weekly.Collect(ctx)
	assert.True(t, errors.Is(err, ErrIncompleteBundle))
	assert.Equal(t, 100, env.user(t).Gold)

	status, err := env.svc.Weekly.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Completed)
	assert.False(t, status.Collectable)
	assert.Len(t, status.Quests, 2)
}

func TestWeeklyService_CollectIgnoresPreviousPeriod(t *testing.T) {
	env := seeded(t)
	ctx := context.Background()

	addWeekly(t, env, 10, 30, model.QuestStatusCompleted)
	env.clock.Advance(7 * 24 * time.Hour)

	_, err := env.svc.Weekly.Collect(ctx)
	assert.True(t, errors.Is(err, ErrIncompleteBundle))
}
