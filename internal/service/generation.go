package service

import (
	"context"
	"math"
	"time"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Generator materializes quest instances from templates.
type Generator struct {
	*core
}

// GenerateDaily regenerates the Daily quests of every unlocked class.
func (g *Generator) GenerateDaily(ctx context.Context) error {
	return g.write(ctx, func(ctx context.Context, ev *events) error {
		return g.generateDaily(ctx, g.now(), ev)
	})
}

// GenerateDailyForClass regenerates the Daily quests of one unlocked class.
func (g *Generator) GenerateDailyForClass(ctx context.Context, classID string) error {
	return g.write(ctx, func(ctx context.Context, ev *events) error {
		class, err := g.class(ctx, classID)
		if err != nil {
			return err
		}
		if !class.IsUnlocked {
			return errors.Wrapf(ErrPreconditionUnmet, "class %s is locked", classID)
		}
		_, err = g.generateDailyForClass(ctx, class, g.now(), ev)
		return err
	})
}

// GenerateWeekly regenerates the weekly bundle. It reports false when the
// player is not eligible.
func (g *Generator) GenerateWeekly(ctx context.Context) (bool, error) {
	var generated bool
	err := g.write(ctx, func(ctx context.Context, ev *events) error {
		var err error
		generated, err = g.generateWeekly(ctx, g.now(), ev)
		return err
	})
	return generated, err
}

func (g *Generator) generateDaily(ctx context.Context, now time.Time, ev *events) error {
	classes, err := g.repo.ListClasses(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list classes")
	}

	for _, class := range classes {
		if !class.IsUnlocked {
			continue
		}
		if _, err := g.generateDailyForClass(ctx, class, now, ev); err != nil {
			return err
		}
	}

	return nil
}

func (g *Generator) generateDailyForClass(ctx context.Context, class *model.CharacterClass, now time.Time, ev *events) (int, error) {
	log := logger.Logger()

	if err := g.expire(ctx, model.QuestTypeDaily, class.ID, now); err != nil {
		return 0, err
	}

	templates, err := g.repo.ListTemplates(ctx, model.TemplateFilter{
		Type:        model.QuestTypeDaily,
		Class:       class.ID,
		EnabledOnly: true,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list templates for %s", class.ID)
	}

	picked := g.pick(templates, class.DailyQuestSlots)
	expires := NextDailyReset(now, g.loc)
	for i, t := range picked {
		q := materialize(t, model.QuestTypeDaily, class.Level, i, now, expires)
		if err := g.repo.CreateInstance(ctx, q); err != nil {
			return 0, errors.Wrapf(err, "failed to create daily quest for %s", class.ID)
		}
	}

	log.Debug("Daily quests generated",
		zap.String("class", class.ID),
		zap.Int("count", len(picked)),
		zap.Int("slots", class.DailyQuestSlots))

	ev.add(model.Event{
		Type:    model.EventDailyRegenerated,
		Class:   class.ID,
		Payload: map[string]any{"count": len(picked)},
		At:      now,
	})

	return len(picked), nil
}

func (g *Generator) generateWeekly(ctx context.Context, now time.Time, ev *events) (bool, error) {
	log := logger.Logger()

	classes, err := g.repo.ListClasses(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to list classes")
	}
	if !g.eligible(classes) {
		log.Debug("Weekly generation skipped, player not eligible")
		return false, nil
	}

	if err := g.expire(ctx, model.QuestTypeWeekly, "", now); err != nil {
		return false, err
	}

	weekly, err := g.repo.ListTemplates(ctx, model.TemplateFilter{Type: model.QuestTypeWeekly, EnabledOnly: true})
	if err != nil {
		return false, errors.Wrap(err, "failed to list weekly templates")
	}
	daily, err := g.repo.ListTemplates(ctx, model.TemplateFilter{Type: model.QuestTypeDaily, EnabledOnly: true})
	if err != nil {
		return false, errors.Wrap(err, "failed to list daily templates")
	}

	var picked []*model.QuestTemplate
	if len(weekly) > 0 {
		picked = append(picked, weekly[g.rand.Intn(len(weekly))])
	}
	picked = append(picked, g.pick(daily, WeeklyBundleSize-len(picked))...)

	level := averageLevel(classes)
	expires := NextWeeklyReset(now, g.loc)
	for i, t := range picked {
		q := materialize(t, model.QuestTypeWeekly, level, i, now, expires)
		if err := g.repo.CreateInstance(ctx, q); err != nil {
			return false, errors.Wrap(err, "failed to create weekly quest")
		}
	}

	user, err := g.user(ctx)
	if err != nil {
		return false, err
	}
	user.LastWeeklyGenerated = &now
	if err := g.repo.UpdateUser(ctx, user); err != nil {
		return false, errors.Wrap(err, "failed to stamp weekly generation")
	}

	log.Info("Weekly bundle generated",
		zap.Int("count", len(picked)),
		zap.Int("level", level),
		zap.Time("expiresAt", expires))

	ev.add(model.Event{
		Type:    model.EventWeeklyRegenerated,
		Payload: map[string]any{"count": len(picked), "level": level},
		At:      now,
	})

	return true, nil
}

// expire moves the instances of typ (and class, when set) that belong to
// the running period to expired. Completed instances of a past period keep
// their status.
func (g *Generator) expire(ctx context.Context, typ model.QuestType, class string, now time.Time) error {
	current, err := g.repo.ListInstances(ctx, model.InstanceFilter{
		Type:     typ,
		Class:    class,
		Statuses: []model.QuestStatus{model.QuestStatusActive, model.QuestStatusCompleted},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to list current %s quests", typ)
	}

	for _, q := range current {
		if q.Status == model.QuestStatusCompleted && !q.InPeriod(now) {
			continue
		}
		q.Status = model.QuestStatusExpired
		if err := g.repo.UpdateInstance(ctx, q); err != nil {
			return errors.Wrapf(err, "failed to expire quest %s", q.ID)
		}
	}

	return nil
}

// pick returns up to n templates in random order.
func (g *Generator) pick(templates []*model.QuestTemplate, n int) []*model.QuestTemplate {
	if n <= 0 {
		return nil
	}

	shuffled := make([]*model.QuestTemplate, len(templates))
	copy(shuffled, templates)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := g.rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func (g *Generator) eligible(classes []*model.CharacterClass) bool {
	var n int
	for _, c := range classes {
		if c.IsUnlocked && c.Level >= g.weekly.LevelThreshold {
			n++
		}
	}
	return n >= g.weekly.MinClasses
}

// averageLevel is the rounded mean level of the unlocked classes.
func averageLevel(classes []*model.CharacterClass) int {
	var sum, n int
	for _, c := range classes {
		if c.IsUnlocked {
			sum += c.Level
			n++
		}
	}
	if n == 0 {
		return model.MinLevel
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func materialize(t *model.QuestTemplate, typ model.QuestType, level, slot int, now, expires time.Time) *model.QuestInstance {
	goal := RequirementFor(t, level)
	return &model.QuestInstance{
		ID:               uuid.New(),
		TemplateID:       t.ID,
		Type:             typ,
		TemplateType:     t.Type,
		Class:            t.Class,
		Title:            t.Title,
		Description:      t.Description,
		RequirementCount: goal,
		Progress:         0,
		ProgressGoal:     goal,
		XPReward:         ScaleReward(t.BaseXP, level),
		GoldReward:       ScaleReward(t.BaseGold, level),
		Status:           model.QuestStatusActive,
		CreatedAt:        now,
		ExpiresAt:        expires,
		ClassLevel:       level,
		SlotIndex:        slot,
	}
}
