package service

import (
	"context"
	"time"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type CompletionResult struct {
	Quest       *model.QuestInstance
	GoldAwarded int
	XPAwarded   int
	LevelUp     *LevelUpResult
	// WeeklyGenerated is set when this completion made the player eligible
	// for the weekly bundle and a new bundle was generated.
	WeeklyGenerated bool
}

type RerollResult struct {
	Quest *model.QuestInstance
	Cost  int
}

// QuestService owns the quest instance state machine.
type QuestService struct {
	*core
	gen *Generator
}

func (s *QuestService) GetQuest(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error) {
	return s.instance(ctx, id)
}

func (s *QuestService) ListQuests(ctx context.Context, filter model.InstanceFilter) ([]*model.QuestInstance, error) {
	quests, err := s.repo.ListInstances(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list quests")
	}
	return quests, nil
}

// CurrentQuests lists the active and completed quests of typ that belong to
// the current period.
func (s *QuestService) CurrentQuests(ctx context.Context, typ model.QuestType) ([]*model.QuestInstance, error) {
	quests, err := s.ListQuests(ctx, model.InstanceFilter{
		Type:     typ,
		Statuses: []model.QuestStatus{model.QuestStatusActive, model.QuestStatusCompleted},
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []*model.QuestInstance
	for _, q := range quests {
		if q.InPeriod(now) {
			out = append(out, q)
		}
	}
	return out, nil
}

// UpdateProgress sets the progress of an active quest, clamped to its goal.
func (s *QuestService) UpdateProgress(ctx context.Context, id uuid.UUID, value int) (*model.QuestInstance, error) {
	var quest *model.QuestInstance
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		q, err := s.instance(ctx, id)
		if err != nil {
			return err
		}
		quest, err = s.setProgress(ctx, q, value)
		return err
	})
	return quest, err
}

func (s *QuestService) Increment(ctx context.Context, id uuid.UUID, amount int) (*model.QuestInstance, error) {
	return s.step(ctx, id, defaultAmount(amount))
}

func (s *QuestService) Decrement(ctx context.Context, id uuid.UUID, amount int) (*model.QuestInstance, error) {
	return s.step(ctx, id, -defaultAmount(amount))
}

func defaultAmount(amount int) int {
	if amount <= 0 {
		return 1
	}
	return amount
}

func (s *QuestService) step(ctx context.Context, id uuid.UUID, delta int) (*model.QuestInstance, error) {
	var quest *model.QuestInstance
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		q, err := s.instance(ctx, id)
		if err != nil {
			return err
		}
		quest, err = s.setProgress(ctx, q, q.Progress+delta)
		return err
	})
	return quest, err
}

func (s *QuestService) setProgress(ctx context.Context, q *model.QuestInstance, value int) (*model.QuestInstance, error) {
	if !q.IsActive() {
		return nil, errors.Wrapf(ErrInvalidState, "quest %s is %s", q.ID, q.Status)
	}

	if value < 0 {
		value = 0
	}
	if value > q.ProgressGoal {
		value = q.ProgressGoal
	}
	q.Progress = value

	if err := s.repo.UpdateInstance(ctx, q); err != nil {
		return nil, errors.Wrap(err, "failed to update quest progress")
	}
	return q, nil
}

// Complete finishes an active quest whose progress reached its goal. Daily
// quests pay out immediately; weekly quests pay out with the bundle.
func (s *QuestService) Complete(ctx context.Context, id uuid.UUID) (*CompletionResult, error) {
	log := logger.Logger()

	var res *CompletionResult
	err := s.write(ctx, func(ctx context.Context, ev *events) error {
		q, err := s.instance(ctx, id)
		if err != nil {
			return err
		}
		if !q.IsActive() {
			return errors.Wrapf(ErrInvalidState, "quest %s is %s", q.ID, q.Status)
		}
		if q.Progress < q.ProgressGoal {
			return errors.Wrapf(ErrIncompleteProgress, "progress %d of %d", q.Progress, q.ProgressGoal)
		}

		now := s.now()
		q.Status = model.QuestStatusCompleted
		q.CompletedAt = &now
		if err := s.repo.UpdateInstance(ctx, q); err != nil {
			return errors.Wrap(err, "failed to complete quest")
		}

		res = &CompletionResult{Quest: q}
		ev.add(model.Event{
			Type:    model.EventQuestCompleted,
			Class:   q.Class,
			Payload: map[string]any{"quest_id": q.ID.String(), "type": q.Type},
			At:      now,
		})

		if q.Type != model.QuestTypeDaily {
			return nil
		}
		return s.payDaily(ctx, q, res, ev)
	})
	if err != nil {
		return nil, err
	}

	log.Info("Quest completed",
		zap.String("quest", res.Quest.ID.String()),
		zap.String("class", res.Quest.Class),
		zap.Int("gold", res.GoldAwarded),
		zap.Int("xp", res.XPAwarded))

	return res, nil
}

func (s *QuestService) payDaily(ctx context.Context, q *model.QuestInstance, res *CompletionResult, ev *events) error {
	now := s.now()

	user, err := s.user(ctx)
	if err != nil {
		return err
	}
	user.Gold += q.GoldReward
	user.TotalXP += q.XPReward
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return errors.Wrap(err, "failed to credit user")
	}
	res.GoldAwarded = q.GoldReward
	res.XPAwarded = q.XPReward

	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list classes")
	}
	wasEligible := s.gen.eligible(classes)

	var class *model.CharacterClass
	for _, c := range classes {
		if c.ID == q.Class {
			class = c
			break
		}
	}
	if class == nil {
		logger.Logger().Warn("Completed quest has no owning class", zap.String("class", q.Class))
		return nil
	}

	lvl := AwardXP(class, q.XPReward)
	if err := s.repo.UpdateClass(ctx, class); err != nil {
		return errors.Wrap(err, "failed to update class progression")
	}
	res.LevelUp = &lvl
	if lvl.LeveledUp {
		ev.add(levelUpEvent(lvl, now))
	}

	if wasEligible || !s.gen.eligible(classes) {
		return nil
	}

	bundle, err := s.currentBundle(ctx)
	if err != nil {
		return err
	}
	if len(bundle) > 0 {
		return nil
	}

	res.WeeklyGenerated, err = s.gen.generateWeekly(ctx, now, ev)
	return err
}

// Reroll replaces the content of an active quest with another template of
// the same kind, charging the current reroll price.
func (s *QuestService) Reroll(ctx context.Context, id uuid.UUID) (*RerollResult, error) {
	log := logger.Logger()

	var res *RerollResult
	err := s.write(ctx, func(ctx context.Context, _ *events) error {
		q, err := s.instance(ctx, id)
		if err != nil {
			return err
		}
		if !q.IsActive() {
			return errors.Wrapf(ErrInvalidState, "quest %s is %s", q.ID, q.Status)
		}

		user, err := s.user(ctx)
		if err != nil {
			return err
		}
		cost := RerollCost(user.DailyRerollCount)
		if user.Gold < cost {
			return errors.Wrapf(ErrInsufficientFunds, "reroll costs %d, have %d", cost, user.Gold)
		}

		candidates, err := s.rerollCandidates(ctx, q)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return errors.Wrapf(ErrNoAlternatives, "quest %s", q.ID)
		}
		t := candidates[s.rand.Intn(len(candidates))]

		level, err := s.rerollLevel(ctx, q)
		if err != nil {
			return err
		}

		goal := RequirementFor(t, level)
		q.TemplateID = t.ID
		q.TemplateType = t.Type
		q.Title = t.Title
		q.Description = t.Description
		q.RequirementCount = goal
		q.ProgressGoal = goal
		q.Progress = 0
		q.XPReward = ScaleReward(t.BaseXP, level)
		q.GoldReward = ScaleReward(t.BaseGold, level)
		q.ClassLevel = level
		q.RerollCount++
		if err := s.repo.UpdateInstance(ctx, q); err != nil {
			return errors.Wrap(err, "failed to reroll quest")
		}

		user.Gold -= cost
		user.DailyRerollCount++
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return errors.Wrap(err, "failed to charge reroll")
		}

		res = &RerollResult{Quest: q, Cost: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Quest rerolled",
		zap.String("quest", res.Quest.ID.String()),
		zap.String("template", res.Quest.TemplateID.String()),
		zap.Int("cost", res.Cost))

	return res, nil
}

func (s *QuestService) rerollCandidates(ctx context.Context, q *model.QuestInstance) ([]*model.QuestTemplate, error) {
	typ := q.TemplateType
	if typ == "" {
		typ = q.Type
	}

	templates, err := s.repo.ListTemplates(ctx, model.TemplateFilter{
		Type:        typ,
		Class:       q.Class,
		EnabledOnly: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reroll templates")
	}

	siblings, err := s.repo.ListInstances(ctx, model.InstanceFilter{
		Type:     q.Type,
		Class:    q.Class,
		Statuses: []model.QuestStatus{model.QuestStatusActive, model.QuestStatusCompleted},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sibling quests")
	}

	now := s.now()
	used := map[uuid.UUID]bool{q.TemplateID: true}
	for _, sib := range siblings {
		if sib.ID != q.ID && sib.InPeriod(now) {
			used[sib.TemplateID] = true
		}
	}

	var out []*model.QuestTemplate
	for _, t := range templates {
		if !used[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

// rerollLevel is the level a rerolled quest is scaled at: the owning class
// for daily quests and the bundle reference level for weekly ones.
func (s *QuestService) rerollLevel(ctx context.Context, q *model.QuestInstance) (int, error) {
	if q.Type == model.QuestTypeWeekly {
		classes, err := s.repo.ListClasses(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "failed to list classes")
		}
		return averageLevel(classes), nil
	}

	class, err := s.class(ctx, q.Class)
	if errors.Is(err, ErrNotFound) {
		return q.ClassLevel, nil
	}
	if err != nil {
		return 0, err
	}
	return class.Level, nil
}

// currentBundle returns the weekly instances of the current period.
func (c *core) currentBundle(ctx context.Context) ([]*model.QuestInstance, error) {
	quests, err := c.repo.ListInstances(ctx, model.InstanceFilter{
		Type:     model.QuestTypeWeekly,
		Statuses: []model.QuestStatus{model.QuestStatusActive, model.QuestStatusCompleted},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list weekly quests")
	}

	now := c.now()
	var out []*model.QuestInstance
	for _, q := range quests {
		if q.InPeriod(now) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *QuestService) instance(ctx context.Context, id uuid.UUID) (*model.QuestInstance, error) {
	q, err := s.repo.GetInstance(ctx, id)
	if err != nil {
		return nil, notFound(err, "quest "+id.String())
	}
	return q, nil
}

func levelUpEvent(lvl LevelUpResult, now time.Time) model.Event {
	return model.Event{
		Type:    model.EventLevelUp,
		Class:   lvl.ClassID,
		Payload: map[string]any{"new_level": lvl.NewLevel, "levels": lvl.Levels},
		At:      now,
	}
}
