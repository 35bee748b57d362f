package service

import (
	"context"
	"sort"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ClassView string

const (
	// ViewHome lists every class, locked ones after unlocked ones.
	ViewHome ClassView = "home"
	// ViewQuests lists unlocked classes only.
	ViewQuests ClassView = "quests"
)

// ClassService serves the player record, classes and their display order.
type ClassService struct {
	*core
}

func (s *ClassService) GetUser(ctx context.Context) (*model.User, error) {
	return s.user(ctx)
}

func (s *ClassService) GetClass(ctx context.Context, id string) (*model.CharacterClass, error) {
	return s.class(ctx, id)
}

func (s *ClassService) ListClasses(ctx context.Context) ([]*model.CharacterClass, error) {
	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list classes")
	}
	return classes, nil
}

func (s *ClassService) ClassOrder(ctx context.Context) ([]string, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	return user.ClassOrder, nil
}

// SortedClasses returns the classes in the player's order for view. Classes
// missing from the order follow the ordered ones.
func (s *ClassService) SortedClasses(ctx context.Context, view ClassView) ([]*model.CharacterClass, error) {
	user, err := s.user(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.ListClasses(ctx)
	if err != nil {
		return nil, err
	}

	rank := make(map[string]int, len(user.ClassOrder))
	for _, id := range user.ClassOrder {
		if id != model.WeeklyOrderEntry {
			rank[id] = len(rank)
		}
	}
	position := func(c *model.CharacterClass) int {
		if r, ok := rank[c.ID]; ok {
			return r
		}
		return len(rank) + c.SortIndex
	}

	out := make([]*model.CharacterClass, 0, len(classes))
	for _, c := range classes {
		if view == ViewQuests && !c.IsUnlocked {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if view == ViewHome && out[i].IsUnlocked != out[j].IsUnlocked {
			return out[i].IsUnlocked
		}
		return position(out[i]) < position(out[j])
	})

	return out, nil
}

// WeeklyPosition is the index of the weekly section within the class order.
func (s *ClassService) WeeklyPosition(ctx context.Context) (int, error) {
	user, err := s.user(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range user.ClassOrder {
		if id == model.WeeklyOrderEntry {
			return i, nil
		}
	}
	return len(user.ClassOrder), nil
}

// UpdateClassOrder stores a new display order. Entries must be unique known
// class ids or the weekly entry; classes left out are appended.
func (s *ClassService) UpdateClassOrder(ctx context.Context, order []string) ([]string, error) {
	log := logger.Logger()

	var stored []string
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		classes, err := s.repo.ListClasses(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list classes")
		}
		known := make(map[string]bool, len(classes)+1)
		for _, c := range classes {
			known[c.ID] = true
		}
		known[model.WeeklyOrderEntry] = true

		seen := make(map[string]bool, len(order))
		for _, id := range order {
			if !known[id] {
				return errors.Wrapf(ErrInvalidClassOrder, "unknown class %q", id)
			}
			if seen[id] {
				return errors.Wrapf(ErrInvalidClassOrder, "duplicate class %q", id)
			}
			seen[id] = true
		}

		stored = append([]string{}, order...)
		for _, c := range classes {
			if !seen[c.ID] {
				stored = append(stored, c.ID)
			}
		}
		if !seen[model.WeeklyOrderEntry] {
			stored = append(stored, model.WeeklyOrderEntry)
		}

		user, err := s.user(ctx)
		if err != nil {
			return err
		}
		user.ClassOrder = stored
		return errors.Wrap(s.repo.UpdateUser(ctx, user), "failed to update class order")
	})
	if err != nil {
		return nil, err
	}

	log.Debug("Class order updated", zap.Strings("order", stored))

	return stored, nil
}
