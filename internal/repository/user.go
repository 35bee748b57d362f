package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"levelup/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
)

type User struct {
	ID                  string     `db:"id"`
	Gold                int        `db:"gold"`
	TotalXP             int        `db:"total_xp"`
	DailyRerollCount    int        `db:"daily_reroll_count"`
	LastRerollReset     time.Time  `db:"last_reroll_reset"`
	CreatedAt           time.Time  `db:"created_at"`
	LastActive          time.Time  `db:"last_active"`
	LastWeeklyGenerated *time.Time `db:"last_weekly_generated"`
	ClassOrder          string     `db:"class_order"`
}

var userColumns = []string{
	"id", "gold", "total_xp", "daily_reroll_count", "last_reroll_reset",
	"created_at", "last_active", "last_weekly_generated", "class_order",
}

func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query, args, err := r.sb.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = r.get(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user.toModel()
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	values, err := userValues(user)
	if err != nil {
		return err
	}

	_, err = r.exec(ctx, r.sb.Insert("users").SetMap(values))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, user *model.User) error {
	values, err := userValues(user)
	if err != nil {
		return err
	}
	delete(values, "id")
	delete(values, "created_at")

	rows, err := r.exec(ctx, r.sb.
		Update("users").
		SetMap(values).
		Where(squirrel.Eq{"id": user.ID}))
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func userValues(user *model.User) (map[string]interface{}, error) {
	order := user.ClassOrder
	if order == nil {
		order = []string{}
	}
	classOrder, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode class order: %w", err)
	}

	return map[string]interface{}{
		"id":                    user.ID,
		"gold":                  user.Gold,
		"total_xp":              user.TotalXP,
		"daily_reroll_count":    user.DailyRerollCount,
		"last_reroll_reset":     user.LastRerollReset,
		"created_at":            user.CreatedAt,
		"last_active":           user.LastActive,
		"last_weekly_generated": nullTime(user.LastWeeklyGenerated),
		"class_order":           string(classOrder),
	}, nil
}

func (u *User) toModel() (*model.User, error) {
	var order []string
	if u.ClassOrder != "" {
		if err := json.Unmarshal([]byte(u.ClassOrder), &order); err != nil {
			return nil, fmt.Errorf("failed to decode class order: %w", err)
		}
	}

	return &model.User{
		ID:                  u.ID,
		Gold:                u.Gold,
		TotalXP:             u.TotalXP,
		DailyRerollCount:    u.DailyRerollCount,
		LastRerollReset:     u.LastRerollReset,
		CreatedAt:           u.CreatedAt,
		LastActive:          u.LastActive,
		LastWeeklyGenerated: u.LastWeeklyGenerated,
		ClassOrder:          order,
	}, nil
}
