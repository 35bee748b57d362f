package service

import (
	"context"
	"strings"

	"levelup/internal/catalog"
	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"
)

// TemplateInput carries the editable fields of a custom template.
type TemplateInput struct {
	Title               string
	Description         string
	Type                model.QuestType
	Class               string
	BaseXP              int
	BaseGold            int
	Enabled             bool
	Scaling             bool
	Level1Requirement   *int
	Level100Requirement *int
	RequirementCount    int
}

// TemplateService manages the template catalog: catalog sync, custom
// templates and search.
type TemplateService struct {
	*core
	catalog CatalogSource
}

func (s *TemplateService) Get(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, notFound(err, "template "+id.String())
	}
	return t, nil
}

func (s *TemplateService) List(ctx context.Context, filter model.TemplateFilter) ([]*model.QuestTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}
	return templates, nil
}

type templateTitles []*model.QuestTemplate

func (t templateTitles) String(i int) string {
	return t[i].Title
}

func (t templateTitles) Len() int {
	return len(t)
}

// Search fuzzy matches query against the titles of the filtered templates,
// best match first. An empty query returns the filtered list unchanged.
func (s *TemplateService) Search(ctx context.Context, query string, filter model.TemplateFilter) ([]*model.QuestTemplate, error) {
	templates, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return templates, nil
	}

	matches := fuzzy.FindFrom(query, templateTitles(templates))
	out := make([]*model.QuestTemplate, len(matches))
	for i, m := range matches {
		out[i] = templates[m.Index]
	}
	return out, nil
}

func (s *TemplateService) CreateCustom(ctx context.Context, in TemplateInput) (*model.QuestTemplate, error) {
	var t *model.QuestTemplate
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		if err := s.validate(ctx, &in); err != nil {
			return err
		}

		t = &model.QuestTemplate{
			ID:        uuid.New(),
			IsCustom:  true,
			CreatedAt: s.now(),
		}
		in.apply(t)
		return errors.Wrap(s.repo.CreateTemplate(ctx, t), "failed to create template")
	})
	if err != nil {
		return nil, err
	}

	logger.Logger().Info("Custom template created",
		zap.String("template", t.ID.String()),
		zap.String("class", t.Class))

	return t, nil
}

func (s *TemplateService) UpdateCustom(ctx context.Context, id uuid.UUID, in TemplateInput) (*model.QuestTemplate, error) {
	var t *model.QuestTemplate
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		var err error
		t, err = s.custom(ctx, id)
		if err != nil {
			return err
		}
		if err := s.validate(ctx, &in); err != nil {
			return err
		}

		in.apply(t)
		return errors.Wrap(s.repo.UpdateTemplate(ctx, t), "failed to update template")
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteCustom removes a custom template. Instances created from it keep
// their copied content.
func (s *TemplateService) DeleteCustom(ctx context.Context, id uuid.UUID) error {
	return s.write(ctx, func(ctx context.Context, _ *events) error {
		if _, err := s.custom(ctx, id); err != nil {
			return err
		}
		return errors.Wrap(s.repo.DeleteTemplate(ctx, id), "failed to delete template")
	})
}

func (s *TemplateService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) (*model.QuestTemplate, error) {
	var t *model.QuestTemplate
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		var err error
		t, err = s.Get(ctx, id)
		if err != nil {
			return err
		}
		t.Enabled = enabled
		return errors.Wrap(s.repo.UpdateTemplate(ctx, t), "failed to update template")
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Sync merges catalog templates and classes missing from the store. Existing
// records are never overwritten; templates match on title, class and type.
func (s *TemplateService) Sync(ctx context.Context) (int, error) {
	var added int
	err := s.write(ctx, func(ctx context.Context, ev *events) error {
		var err error
		added, err = s.sync(ctx, ev)
		return err
	})
	return added, err
}

func (s *TemplateService) sync(ctx context.Context, ev *events) (int, error) {
	log := logger.Logger()

	c, err := s.catalog.Catalog()
	if err != nil {
		return 0, errors.Wrap(err, "failed to load catalog")
	}
	now := s.now()

	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list classes")
	}
	haveClass := make(map[string]bool, len(classes))
	for _, cls := range classes {
		haveClass[cls.ID] = true
	}
	for i, cfg := range c.Classes {
		if haveClass[cfg.ID] {
			continue
		}
		if err := s.repo.CreateClass(ctx, newClass(cfg.ID, len(classes)+i, false, now)); err != nil {
			return 0, errors.Wrapf(err, "failed to add class %s", cfg.ID)
		}
		log.Info("Catalog class added", zap.String("class", cfg.ID))
	}

	existing, err := s.repo.ListTemplates(ctx, model.TemplateFilter{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list templates")
	}

	var added int
	for _, t := range catalog.Templates(c, now) {
		if containsTemplate(existing, t) {
			continue
		}
		if err := s.repo.CreateTemplate(ctx, t); err != nil {
			return added, errors.Wrapf(err, "failed to add template %q", t.Title)
		}
		existing = append(existing, t)
		added++
	}

	if added > 0 {
		log.Info("Catalog templates synced", zap.Int("added", added))
		ev.add(model.Event{
			Type:    model.EventTemplatesSynced,
			Payload: map[string]any{"added": added},
			At:      now,
		})
	}

	return added, nil
}

func containsTemplate(list []*model.QuestTemplate, t *model.QuestTemplate) bool {
	for _, e := range list {
		if e.SameIdentity(t) {
			return true
		}
	}
	return false
}

func (s *TemplateService) custom(ctx context.Context, id uuid.UUID) (*model.QuestTemplate, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsCustom {
		return nil, errors.Wrapf(ErrInvalidState, "template %s is not custom", id)
	}
	return t, nil
}

func (s *TemplateService) validate(ctx context.Context, in *TemplateInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return errors.Wrap(ErrInvalidTemplate, "title is required")
	}
	if !in.Type.Valid() {
		return errors.Wrapf(ErrInvalidTemplate, "unknown type %q", in.Type)
	}
	if in.BaseXP < 0 || in.BaseGold < 0 {
		return errors.Wrap(ErrInvalidTemplate, "rewards must not be negative")
	}
	if in.Scaling && (in.Level1Requirement == nil || in.Level100Requirement == nil) {
		return errors.Wrap(ErrInvalidTemplate, "scaling templates need both level anchors")
	}
	if (in.Level1Requirement != nil && *in.Level1Requirement < 1) ||
		(in.Level100Requirement != nil && *in.Level100Requirement < 1) {
		return errors.Wrap(ErrInvalidTemplate, "level anchors must be at least 1")
	}
	if in.RequirementCount < 1 {
		in.RequirementCount = 1
	}

	if in.Type == model.QuestTypeWeekly && (in.Class == "" || in.Class == model.WeeklyOrderEntry) {
		in.Class = model.WeeklyOrderEntry
		return nil
	}
	if _, err := s.class(ctx, in.Class); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.Wrapf(ErrInvalidTemplate, "unknown class %q", in.Class)
		}
		return err
	}
	return nil
}

func (in TemplateInput) apply(t *model.QuestTemplate) {
	t.Title = in.Title
	t.Description = in.Description
	t.Type = in.Type
	t.Class = in.Class
	t.BaseXP = in.BaseXP
	t.BaseGold = in.BaseGold
	t.Enabled = in.Enabled
	t.Scaling = in.Scaling
	t.Level1Requirement = in.Level1Requirement
	t.Level100Requirement = in.Level100Requirement
	t.RequirementCount = in.RequirementCount
}
