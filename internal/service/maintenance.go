package service

import (
	"context"
	"sync/atomic"
	"time"

	"levelup/internal/catalog"
	"levelup/internal/model"
	"levelup/internal/repository"
	"levelup/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const initKey = "init"

type TickResult struct {
	NewDay          bool
	NewWeek         bool
	WeeklyGenerated bool
}

// Maintenance owns first-run seeding and the day/week rollover.
type Maintenance struct {
	*core
	gen       *Generator
	templates *TemplateService
	catalog   CatalogSource

	group       singleflight.Group
	initialized atomic.Bool
}

// EnsureInitialized seeds an empty store, or syncs the catalog into an
// existing one, at most once per process. Concurrent callers share one
// in-flight run and its error; a failed run is retried by the next call.
func (m *Maintenance) EnsureInitialized(ctx context.Context) error {
	if m.initialized.Load() {
		return nil
	}

	_, err, _ := m.group.Do(initKey, func() (interface{}, error) {
		if m.initialized.Load() {
			return nil, nil
		}
		if err := m.initialize(ctx); err != nil {
			return nil, err
		}
		m.initialized.Store(true)
		return nil, nil
	})
	return err
}

func (m *Maintenance) Initialized() bool {
	return m.initialized.Load()
}

func (m *Maintenance) initialize(ctx context.Context) error {
	log := logger.Logger()

	return m.write(ctx, func(ctx context.Context, ev *events) error {
		_, err := m.repo.GetUser(ctx, model.PlayerID)
		switch {
		case err == nil:
			added, err := m.templates.sync(ctx, ev)
			if err != nil {
				return err
			}
			log.Info("Store already seeded", zap.Int("templatesAdded", added))
			return nil
		case errors.Is(err, repository.ErrNotFound):
			return m.seed(ctx, ev)
		default:
			return errors.Wrap(err, "failed to load user")
		}
	})
}

// seed creates the player, every catalog class and the catalog templates,
// then generates the first day's quests.
func (m *Maintenance) seed(ctx context.Context, ev *events) error {
	log := logger.Logger()

	c, err := m.catalog.Catalog()
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}
	now := m.now()

	order := append([]string{}, c.UserDefaults.ClassOrder...)
	if len(order) == 0 {
		for _, cls := range c.Classes {
			order = append(order, cls.ID)
		}
		order = append(order, model.WeeklyOrderEntry)
	}

	user := &model.User{
		ID:              model.PlayerID,
		Gold:            c.UserDefaults.Gold,
		LastRerollReset: now,
		CreatedAt:       now,
		LastActive:      now,
		ClassOrder:      order,
	}
	if err := m.repo.CreateUser(ctx, user); err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	starters := make(map[string]bool, len(c.UserDefaults.StarterClasses))
	for _, id := range c.UserDefaults.StarterClasses {
		starters[id] = true
	}
	for i, cfg := range c.Classes {
		if err := m.repo.CreateClass(ctx, newClass(cfg.ID, i, starters[cfg.ID], now)); err != nil {
			return errors.Wrapf(err, "failed to create class %s", cfg.ID)
		}
	}

	templates := catalog.Templates(c, now)
	for _, t := range templates {
		if err := m.repo.CreateTemplate(ctx, t); err != nil {
			return errors.Wrapf(err, "failed to create template %q", t.Title)
		}
	}

	if err := m.gen.generateDaily(ctx, now, ev); err != nil {
		return err
	}
	if _, err := m.gen.generateWeekly(ctx, now, ev); err != nil {
		return err
	}

	log.Info("Store seeded",
		zap.Int("classes", len(c.Classes)),
		zap.Int("templates", len(templates)),
		zap.Int("gold", user.Gold))

	return nil
}

func newClass(id string, sortIndex int, unlocked bool, now time.Time) *model.CharacterClass {
	c := &model.CharacterClass{
		ID:              id,
		Name:            id,
		Level:           model.MinLevel,
		XPToNextLevel:   XPToNextLevel(model.MinLevel),
		IsUnlocked:      unlocked,
		DailyQuestSlots: model.BaseDailyQuestSlots,
		SortIndex:       sortIndex,
	}
	if unlocked {
		c.UnlockedAt = &now
	}
	return c
}

// Tick applies the day and week rollovers that happened since the player
// was last active.
func (m *Maintenance) Tick(ctx context.Context) (*TickResult, error) {
	log := logger.Logger()

	if err := m.EnsureInitialized(ctx); err != nil {
		return nil, err
	}

	res := &TickResult{}
	err := m.write(ctx, func(ctx context.Context, ev *events) error {
		user, err := m.user(ctx)
		if err != nil {
			return err
		}

		now := m.now()
		res.NewDay = IsNewDay(user.LastActive, now, m.loc)
		res.NewWeek = IsNewWeek(user.LastActive, now, m.loc)

		if res.NewDay {
			user.DailyRerollCount = 0
			user.LastRerollReset = now
		}
		user.LastActive = now
		if err := m.repo.UpdateUser(ctx, user); err != nil {
			return errors.Wrap(err, "failed to stamp activity")
		}

		if res.NewDay {
			if err := m.gen.generateDaily(ctx, now, ev); err != nil {
				return err
			}
		}
		if res.NewWeek {
			res.WeeklyGenerated, err = m.gen.generateWeekly(ctx, now, ev)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.NewDay || res.NewWeek {
		log.Info("Maintenance rollover applied",
			zap.Bool("newDay", res.NewDay),
			zap.Bool("newWeek", res.NewWeek),
			zap.Bool("weeklyGenerated", res.WeeklyGenerated))
	}

	return res, nil
}

// Reset wipes the store and re-arms initialization. The next
// EnsureInitialized call seeds from scratch.
func (m *Maintenance) Reset(ctx context.Context) error {
	err := m.write(ctx, func(ctx context.Context, _ *events) error {
		return errors.Wrap(m.repo.Clear(ctx), "failed to clear store")
	})
	if err != nil {
		return err
	}

	m.initialized.Store(false)
	logger.Logger().Warn("Store reset")

	return nil
}
