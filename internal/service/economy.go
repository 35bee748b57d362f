package service

import (
	"context"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// EconomyService owns gold spending on unlocks and the reroll price.
type EconomyService struct {
	*core
	gen *Generator
}

// NextRerollCost returns the price of the player's next reroll today.
func (s *EconomyService) NextRerollCost(ctx context.Context) (int, error) {
	user, err := s.user(ctx)
	if err != nil {
		return 0, err
	}
	return RerollCost(user.DailyRerollCount), nil
}

// UnlockClass buys a locked class and generates its Daily quests right away.
func (s *EconomyService) UnlockClass(ctx context.Context, classID string) (*model.CharacterClass, error) {
	log := logger.Logger()

	var class *model.CharacterClass
	err := s.write(ctx, func(ctx context.Context, ev *events) error {
		var err error
		class, err = s.class(ctx, classID)
		if err != nil {
			return err
		}
		if class.IsUnlocked {
			return errors.Wrapf(ErrAlreadyUnlocked, "class %s", classID)
		}

		user, err := s.user(ctx)
		if err != nil {
			return err
		}
		if user.Gold < ClassUnlockCost {
			return errors.Wrapf(ErrInsufficientFunds, "class unlock costs %d, have %d", ClassUnlockCost, user.Gold)
		}

		now := s.now()
		user.Gold -= ClassUnlockCost
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return errors.Wrap(err, "failed to charge class unlock")
		}

		class.IsUnlocked = true
		class.UnlockedAt = &now
		if err := s.repo.UpdateClass(ctx, class); err != nil {
			return errors.Wrap(err, "failed to unlock class")
		}

		ev.add(model.Event{Type: model.EventClassUnlocked, Class: class.ID, At: now})

		_, err = s.gen.generateDailyForClass(ctx, class, now, ev)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("Class unlocked", zap.String("class", class.ID), zap.Int("cost", ClassUnlockCost))

	return class, nil
}

// UnlockSlot buys one extra daily quest slot for an unlocked class.
func (s *EconomyService) UnlockSlot(ctx context.Context, classID string, slot model.Slot) (*model.CharacterClass, error) {
	log := logger.Logger()

	rule, ok := slotRules[slot]
	if !ok {
		return nil, errors.Wrapf(ErrPreconditionUnmet, "unknown slot %d", slot)
	}

	var class *model.CharacterClass
	err := s.write(ctx, func(ctx context.Context, ev *events) error {
		var err error
		class, err = s.class(ctx, classID)
		if err != nil {
			return err
		}
		if !class.IsUnlocked {
			return errors.Wrapf(ErrPreconditionUnmet, "class %s is locked", classID)
		}
		if class.Level < rule.level {
			return errors.Wrapf(ErrPreconditionUnmet, "%s requires level %d", slot, rule.level)
		}
		if class.SlotUnlocked(slot) {
			return errors.Wrapf(ErrAlreadyUnlocked, "%s of %s", slot, classID)
		}

		user, err := s.user(ctx)
		if err != nil {
			return err
		}
		if user.Gold < rule.cost {
			return errors.Wrapf(ErrInsufficientFunds, "%s costs %d, have %d", slot, rule.cost, user.Gold)
		}

		user.Gold -= rule.cost
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return errors.Wrap(err, "failed to charge slot unlock")
		}

		class.SetSlotUnlocked(slot)
		class.DailyQuestSlots++
		if err := s.repo.UpdateClass(ctx, class); err != nil {
			return errors.Wrap(err, "failed to unlock slot")
		}

		ev.add(model.Event{
			Type:    model.EventSlotUnlocked,
			Class:   class.ID,
			Payload: map[string]any{"slot": slot.String(), "slots": class.DailyQuestSlots},
			At:      s.now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Quest slot unlocked",
		zap.String("class", class.ID),
		zap.Stringer("slot", slot),
		zap.Int("cost", rule.cost))

	return class, nil
}
