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

type QuestTemplate struct {
	ID                  uuid.UUID `db:"id"`
	Title               string    `db:"title"`
	Description         string    `db:"description"`
	Type                string    `db:"type"`
	Class               string    `db:"class"`
	BaseXP              int       `db:"base_xp"`
	BaseGold            int       `db:"base_gold"`
	Enabled             bool      `db:"enabled"`
	Scaling             bool      `db:"scaling"`
	Level1Requirement   *int      `db:"level1_requirement"`
	Level100Requirement *int      `db:"level100_requirement"`
	RequirementCount    int       `db:"requirement_count"`
	IsCustom            bool      `db:"is_custom"`
	CreatedAt           time.Time `db:"created_at"`
}

var templateColumns = []string{
	"id", "title", "description", "type", "class", "base_xp", "base_gold",
	"enabled", "scaling", "level1_requirement", "level100_requirement",
	"requirement_count", "is_custom", "created_at",
}

// GetTemplate serves committed reads from an LRU cache. Reads inside a
// transaction always go to the database and never fill the cache.
func (r *Repository) GetTemplate(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error) {
	tx := inTx(ctx)
	if !tx {
		if cached, ok := r.templates.Get(id); ok {
			t := *cached.(*model.QuestTemplate)
			return &t, nil
		}
	}
	gen := r.evictions.Load()

	query, args, err := r.sb.
		Select(templateColumns...).
		From("quest_templates").
		Where(squirrel.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row QuestTemplate
	err = r.get(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quest template: %w", err)
	}

	t := row.toModel()
	if !tx {
		r.cacheTemplate(t, gen)
	}

	return t, nil
}

// cacheTemplate stores t unless an eviction happened after gen was taken.
func (r *Repository) cacheTemplate(t *model.QuestTemplate, gen uint64) {
	cached := *t
	r.templates.Add(t.ID, &cached)
	if r.evictions.Load() != gen {
		r.templates.Remove(t.ID)
	}
}

func (r *Repository) evictTemplate(id uuid.UUID) {
	r.evictions.Add(1)
	r.templates.Remove(id)
}

// forgetTemplate evicts id now and, inside a transaction, again after commit
// so a committed read racing the write cannot leave the old row cached.
func (r *Repository) forgetTemplate(ctx context.Context, id uuid.UUID) {
	r.evictTemplate(id)
	if state, ok := ctx.Value(txKey{}).(*txState); ok {
		state.evict = append(state.evict, id)
	}
}

func (r *Repository) ListTemplates(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error) {
	where := squirrel.Eq{}
	if filter.Type != "" {
		where["type"] = string(filter.Type)
	}
	if filter.Class != "" {
		where["class"] = filter.Class
	}
	if filter.EnabledOnly {
		where["enabled"] = true
	}
	if filter.CustomOnly {
		where["is_custom"] = true
	}

	query, args, err := r.sb.
		Select(templateColumns...).
		From("quest_templates").
		Where(where).
		OrderBy("created_at", "class", "title").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*QuestTemplate
	err = r.selectRows(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quest templates: %w", err)
	}

	templates := make([]*model.QuestTemplate, len(rows))
	for i, row := range rows {
		templates[i] = row.toModel()
	}

	return templates, nil
}

func (r *Repository) CreateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	_, err := r.exec(ctx, r.sb.Insert("quest_templates").SetMap(templateValues(t)))
	if err != nil {
		return fmt.Errorf("failed to insert quest template: %w", err)
	}
	return nil
}

func (r *Repository) UpdateTemplate(ctx context.Context, t *model.QuestTemplate) error {
	values := templateValues(t)
	delete(values, "id")
	delete(values, "created_at")

	rows, err := r.exec(ctx, r.sb.
		Update("quest_templates").
		SetMap(values).
		Where(squirrel.Eq{"id": t.ID.String()}))
	r.forgetTemplate(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update quest template: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	rows, err := r.exec(ctx, r.sb.
		Delete("quest_templates").
		Where(squirrel.Eq{"id": id.String()}))
	r.forgetTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete quest template: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func templateValues(t *model.QuestTemplate) map[string]interface{} {
	return map[string]interface{}{
		"id":                   t.ID.String(),
		"title":                t.Title,
		"description":          t.Description,
		"type":                 string(t.Type),
		"class":                t.Class,
		"base_xp":              t.BaseXP,
		"base_gold":            t.BaseGold,
		"enabled":              t.Enabled,
		"scaling":              t.Scaling,
		"level1_requirement":   nullInt(t.Level1Requirement),
		"level100_requirement": nullInt(t.Level100Requirement),
		"requirement_count":    t.RequirementCount,
		"is_custom":            t.IsCustom,
		"created_at":           t.CreatedAt,
	}
}

func (t *QuestTemplate) toModel() *model.QuestTemplate {
	return &model.QuestTemplate{
		ID:                  t.ID,
		Title:               t.Title,
		Description:         t.Description,
		Type:                model.QuestType(t.Type),
		Class:               t.Class,
		BaseXP:              t.BaseXP,
		BaseGold:            t.BaseGold,
		Enabled:             t.Enabled,
		Scaling:             t.Scaling,
		Level1Requirement:   t.Level1Requirement,
		Level100Requirement: t.Level100Requirement,
		RequirementCount:    t.RequirementCount,
		IsCustom:            t.IsCustom,
		CreatedAt:           t.CreatedAt,
	}
}
