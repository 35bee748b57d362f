package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"levelup/internal/model"

	"github.com/Masterminds/squirrel"
)

type CharacterClass struct {
	ID              string     `db:"id"`
	Name            string     `db:"name"`
	Level           int        `db:"level"`
	CurrentXP       int        `db:"current_xp"`
	XPToNextLevel   int        `db:"xp_to_next_level"`
	IsUnlocked      bool       `db:"is_unlocked"`
	UnlockedAt      *time.Time `db:"unlocked_at"`
	DailyQuestSlots int        `db:"daily_quest_slots"`
	Slot3Unlocked   bool       `db:"slot3_unlocked"`
	Slot4Unlocked   bool       `db:"slot4_unlocked"`
	Slot5Unlocked   bool       `db:"slot5_unlocked"`
	SortIndex       int        `db:"sort_index"`
}

var classColumns = []string{
	"id", "name", "level", "current_xp", "xp_to_next_level", "is_unlocked",
	"unlocked_at", "daily_quest_slots", "slot3_unlocked", "slot4_unlocked",
	"slot5_unlocked", "sort_index",
}

func (r *Repository) GetClass(ctx context.Context, id string) (*model.CharacterClass, error) {
	query, args, err := r.sb.
		Select(classColumns...).
		From("classes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var class CharacterClass
	err = r.get(ctx, &class, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	return class.toModel(), nil
}

func (r *Repository) ListClasses(ctx context.Context) ([]*model.CharacterClass, error) {
	query, args, err := r.sb.
		Select(classColumns...).
		From("classes").
		OrderBy("sort_index", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*CharacterClass
	err = r.selectRows(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}

	classes := make([]*model.CharacterClass, len(rows))
	for i, row := range rows {
		classes[i] = row.toModel()
	}

	return classes, nil
}

func (r *Repository) CreateClass(ctx context.Context, class *model.CharacterClass) error {
	_, err := r.exec(ctx, r.sb.Insert("classes").SetMap(classValues(class)))
	if err != nil {
		return fmt.Errorf("failed to insert class: %w", err)
	}
	return nil
}

func (r *Repository) UpdateClass(ctx context.Context, class *model.CharacterClass) error {
	values := classValues(class)
	delete(values, "id")

	rows, err := r.exec(ctx, r.sb.
		Update("classes").
		SetMap(values).
		Where(squirrel.Eq{"id": class.ID}))
	if err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func classValues(c *model.CharacterClass) map[string]interface{} {
	return map[string]interface{}{
		"id":                c.ID,
		"name":              c.Name,
		"level":             c.Level,
		"current_xp":        c.CurrentXP,
		"xp_to_next_level":  c.XPToNextLevel,
		"is_unlocked":       c.IsUnlocked,
		"unlocked_at":       nullTime(c.UnlockedAt),
		"daily_quest_slots": c.DailyQuestSlots,
		"slot3_unlocked":    c.Slot3Unlocked,
		"slot4_unlocked":    c.Slot4Unlocked,
		"slot5_unlocked":    c.Slot5Unlocked,
		"sort_index":        c.SortIndex,
	}
}

func (c *CharacterClass) toModel() *model.CharacterClass {
	return &model.CharacterClass{
		ID:              c.ID,
		Name:            c.Name,
		Level:           c.Level,
		CurrentXP:       c.CurrentXP,
		XPToNextLevel:   c.XPToNextLevel,
		IsUnlocked:      c.IsUnlocked,
		UnlockedAt:      c.UnlockedAt,
		DailyQuestSlots: c.DailyQuestSlots,
		Slot3Unlocked:   c.Slot3Unlocked,
		Slot4Unlocked:   c.Slot4Unlocked,
		Slot5Unlocked:   c.Slot5Unlocked,
		SortIndex:       c.SortIndex,
	}
}
