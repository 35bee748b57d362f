package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"levelup/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type QuestInstance struct {
	ID               uuid.UUID  `db:"id"`
	TemplateID       uuid.UUID  `db:"template_id"`
	Type             string     `db:"type"`
	TemplateType     string     `db:"template_type"`
	Class            string     `db:"class"`
	Title            string     `db:"title"`
	Description      string     `db:"description"`
	RequirementCount int        `db:"requirement_count"`
	Progress         int        `db:"progress"`
	ProgressGoal     int        `db:"progress_goal"`
	XPReward         int        `db:"xp_reward"`
	GoldReward       int        `db:"gold_reward"`
	Status           string     `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
	ExpiresAt        time.Time  `db:"expires_at"`
	CompletedAt      *time.Time `db:"completed_at"`
	ClassLevel       int        `db:"class_level"`
	RerollCount      int        `db:"reroll_count"`
	SlotIndex        int        `db:"slot_index"`
}

var instanceColumns = []string{
	"id", "template_id", "type", "template_type", "class", "title",
	"description", "requirement_count", "progress", "progress_goal",
	"xp_reward", "gold_reward", "status", "created_at", "expires_at",
	"completed_at", "class_level", "reroll_count", "slot_index",
}

func (r *Repository) GetInstance(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error) {
	query, args, err := r.sb.
		Select(instanceColumns...).
		From("quest_instances").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row QuestInstance
	err = r.get(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quest instance: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) ListInstances(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error) {
	where := squirrel.Eq{}
	if filter.Type != "" {
		where["type"] = string(filter.Type)
	}
	if filter.Class != "" {
		where["class"] = filter.Class
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where["status"] = statuses
	}

	query, args, err := r.sb.
		Select(instanceColumns...).
		From("quest_instances").
		Where(where).
		OrderBy("created_at", "slot_index").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*QuestInstance
	err = r.selectRows(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest instances: %w", err)
	}

	instances := make([]*model.QuestInstance, len(rows))
	for i, row := range rows {
		instances[i] = row.toModel()
	}

	return instances, nil
}

func (r *Repository) CreateInstance(ctx context.Context, q *model.QuestInstance) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}

	_, err := r.exec(ctx, r.sb.Insert("quest_instances").SetMap(instanceValues(q)))
	if err != nil {
		return fmt.Errorf("failed to insert quest instance: %w", err)
	}
	return nil
}

func (r *Repository) UpdateInstance(ctx context.Context, q *model.QuestInstance) error {
	values := instanceValues(q)
	delete(values, "id")
	delete(values, "created_at")

	rows, err := r.exec(ctx, r.sb.
		Update("quest_instances").
		SetMap(values).
		Where(squirrel.Eq{"id": q.ID.String()}))
	if err != nil {
		return fmt.Errorf("failed to update quest instance: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func instanceValues(q *model.QuestInstance) map[string]interface{} {
	return map[string]interface{}{
		"id":                q.ID.String(),
		"template_id":       q.TemplateID.String(),
		"type":              string(q.Type),
		"template_type":     string(q.TemplateType),
		"class":             q.Class,
		"title":             q.Title,
		"description":       q.Description,
		"requirement_count": q.RequirementCount,
		"progress":          q.Progress,
		"progress_goal":     q.ProgressGoal,
		"xp_reward":         q.XPReward,
		"gold_reward":       q.GoldReward,
		"status":            string(q.Status),
		"created_at":        q.CreatedAt,
		"expires_at":        q.ExpiresAt,
		"completed_at":      nullTime(q.CompletedAt),
		"class_level":       q.ClassLevel,
		"reroll_count":      q.RerollCount,
		"slot_index":        q.SlotIndex,
	}
}

func (q *QuestInstance) toModel() *model.QuestInstance {
	return &model.QuestInstance{
		ID:               q.ID,
		TemplateID:       q.TemplateID,
		Type:             model.QuestType(q.Type),
		TemplateType:     model.QuestType(q.TemplateType),
		Class:            q.Class,
		Title:            q.Title,
		Description:      q.Description,
		RequirementCount: q.RequirementCount,
		Progress:         q.Progress,
		ProgressGoal:     q.ProgressGoal,
		XPReward:         q.XPReward,
		GoldReward:       q.GoldReward,
		Status:           model.QuestStatus(q.Status),
		CreatedAt:        q.CreatedAt,
		ExpiresAt:        q.ExpiresAt,
		CompletedAt:      q.CompletedAt,
		ClassLevel:       q.ClassLevel,
		RerollCount:      q.RerollCount,
		SlotIndex:        q.SlotIndex,
	}
}
