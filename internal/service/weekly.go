package service

import (
	"context"
	"time"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type WeeklyStatus struct {
	Eligible       bool
	Quests         []*model.QuestInstance
	Completed      int
	Collectable    bool
	ExpiresAt      *time.Time
	ReferenceLevel int
}

type CollectResult struct {
	GoldAwarded        int
	XPAwardedPerClass  int
	TotalXPDistributed int
	LevelUps           []LevelUpResult
}

// WeeklyService owns the weekly bundle.
type WeeklyService struct {
	*core
	gen *Generator
}

func (s *WeeklyService) IsEligible(ctx context.Context) (bool, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to list classes")
	}
	return s.gen.eligible(classes), nil
}

func (s *WeeklyService) Status(ctx context.Context) (*WeeklyStatus, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}

	bundle, err := s.currentBundle(ctx)
	if err != nil {
		return nil, err
	}

	status := &WeeklyStatus{
		Eligible:       s.gen.eligible(classes),
		Quests:         bundle,
		ReferenceLevel: averageLevel(classes),
	}
	for _, q := range bundle {
		if q.Status == model.QuestStatusCompleted {
			status.Completed++
		}
	}
	status.Collectable = len(bundle) > 0 && status.Completed == len(bundle)
	if len(bundle) > 0 {
		expires := bundle[0].ExpiresAt
		status.ExpiresAt = &expires
	}

	return status, nil
}

// Generate regenerates the weekly bundle, reporting false when not eligible.
func (s *WeeklyService) Generate(ctx context.Context) (bool, error) {
	return s.gen.GenerateWeekly(ctx)
}

// Collect pays out a fully completed bundle: the summed rewards times the
// weekly multiplier, gold once and XP split evenly over unlocked classes.
func (s *WeeklyService) Collect(ctx context.Context) (*CollectResult, error) {
	log := logger.Logger()

	var res *CollectResult
	err := s.write(ctx, func(ctx context.Context, ev *events) error {
		bundle, err := s.currentBundle(ctx)
		if err != nil {
			return err
		}
		if len(bundle) == 0 {
			return errors.Wrap(ErrIncompleteBundle, "no weekly quests")
		}

		var gold, xp int
		for _, q := range bundle {
			if q.Status != model.QuestStatusCompleted {
				return errors.Wrapf(ErrIncompleteBundle, "quest %s is %s", q.ID, q.Status)
			}
			gold += q.GoldReward
			xp += q.XPReward
		}

		now := s.now()
		res = &CollectResult{
			GoldAwarded: gold * WeeklyMultiplier,
			LevelUps:    []LevelUpResult{},
		}
		totalXP := xp * WeeklyMultiplier

		classes, err := s.repo.ListClasses(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list classes")
		}
		var unlocked []*model.CharacterClass
		for _, c := range classes {
			if c.IsUnlocked {
				unlocked = append(unlocked, c)
			}
		}

		if len(unlocked) > 0 {
			res.XPAwardedPerClass = totalXP / len(unlocked)
			res.TotalXPDistributed = res.XPAwardedPerClass * len(unlocked)
		}

		user, err := s.user(ctx)
		if err != nil {
			return err
		}
		user.Gold += res.GoldAwarded
		user.TotalXP += res.TotalXPDistributed
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return errors.Wrap(err, "failed to credit weekly reward")
		}

		for _, c := range unlocked {
			lvl := AwardXP(c, res.XPAwardedPerClass)
			if err := s.repo.UpdateClass(ctx, c); err != nil {
				return errors.Wrapf(err, "failed to update class %s", c.ID)
			}
			if lvl.LeveledUp {
				res.LevelUps = append(res.LevelUps, lvl)
				ev.add(levelUpEvent(lvl, now))
			}
		}

		for _, q := range bundle {
			q.Status = model.QuestStatusCollected
			if err := s.repo.UpdateInstance(ctx, q); err != nil {
				return errors.Wrapf(err, "failed to mark quest %s collected", q.ID)
			}
		}

		ev.add(model.Event{
			Type: model.EventWeeklyCollected,
			Payload: map[string]any{
				"gold_awarded":         res.GoldAwarded,
				"xp_awarded_per_class": res.XPAwardedPerClass,
			},
			At: now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Weekly reward collected",
		zap.Int("gold", res.GoldAwarded),
		zap.Int("xpPerClass", res.XPAwardedPerClass),
		zap.Int("levelUps", len(res.LevelUps)))

	return res, nil
}
