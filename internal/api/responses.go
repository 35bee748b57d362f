package api

import (
	"time"

	"levelup/internal/model"
	"levelup/internal/service"
)

type UserResponse struct {
	Gold                int        `json:"gold"`
	TotalXP             int        `json:"total_xp"`
	DailyRerollCount    int        `json:"daily_reroll_count"`
	LastRerollReset     time.Time  `json:"last_reroll_reset"`
	LastActive          time.Time  `json:"last_active"`
	LastWeeklyGenerated *time.Time `json:"last_weekly_generated,omitempty"`
	ClassOrder          []string   `json:"class_order"`
}

type ClassResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Level           int        `json:"level"`
	CurrentXP       int        `json:"current_xp"`
	XPToNextLevel   int        `json:"xp_to_next_level"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
	DailyQuestSlots int        `json:"daily_quest_slots"`
	Slot3Unlocked   bool       `json:"slot3_unlocked"`
	Slot4Unlocked   bool       `json:"slot4_unlocked"`
	Slot5Unlocked   bool       `json:"slot5_unlocked"`
}

type QuestResponse struct {
	ID           string     `json:"id"`
	TemplateID   string     `json:"template_id"`
	Type         string     `json:"type"`
	Class        string     `json:"class"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Progress     int        `json:"progress"`
	ProgressGoal int        `json:"progress_goal"`
	XPReward     int        `json:"xp_reward"`
	GoldReward   int        `json:"gold_reward"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ClassLevel   int        `json:"class_level"`
	RerollCount  int        `json:"reroll_count"`
	SlotIndex    int        `json:"slot_index"`
}

type TemplateResponse struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	Type                string `json:"type"`
	Class               string `json:"class"`
	BaseXP              int    `json:"base_xp"`
	BaseGold            int    `json:"base_gold"`
	Enabled             bool   `json:"enabled"`
	Scaling             bool   `json:"scaling"`
	Level1Requirement   *int   `json:"level1_requirement,omitempty"`
	Level100Requirement *int   `json:"level100_requirement,omitempty"`
	RequirementCount    int    `json:"requirement_count"`
	IsCustom            bool   `json:"is_custom"`
}

type LevelUpResponse struct {
	ClassID   string `json:"class_id"`
	LeveledUp bool   `json:"leveled_up"`
	NewLevel  int    `json:"new_level"`
	Levels    int    `json:"levels"`
}

type WeeklyStatusResponse struct {
	Eligible       bool            `json:"eligible"`
	Quests         []QuestResponse `json:"quests"`
	Completed      int             `json:"completed"`
	Collectable    bool            `json:"collectable"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	ReferenceLevel int             `json:"reference_level"`
	Position       int             `json:"position"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		Gold:                u.Gold,
		TotalXP:             u.TotalXP,
		DailyRerollCount:    u.DailyRerollCount,
		LastRerollReset:     u.LastRerollReset,
		LastActive:          u.LastActive,
		LastWeeklyGenerated: u.LastWeeklyGenerated,
		ClassOrder:          u.ClassOrder,
	}
}

func newClassResponse(c *model.CharacterClass) ClassResponse {
	return ClassResponse{
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
	}
}

func newClassResponses(classes []*model.CharacterClass) []ClassResponse {
	out := make([]ClassResponse, len(classes))
	for i, c := range classes {
		out[i] = newClassResponse(c)
	}
	return out
}

func newQuestResponse(q *model.QuestInstance) QuestResponse {
	return QuestResponse{
		ID:           q.ID.String(),
		TemplateID:   q.TemplateID.String(),
		Type:         string(q.Type),
		Class:        q.Class,
		Title:        q.Title,
		Description:  q.Description,
		Progress:     q.Progress,
		ProgressGoal: q.ProgressGoal,
		XPReward:     q.XPReward,
		GoldReward:   q.GoldReward,
		Status:       string(q.Status),
		CreatedAt:    q.CreatedAt,
		ExpiresAt:    q.ExpiresAt,
		CompletedAt:  q.CompletedAt,
		ClassLevel:   q.ClassLevel,
		RerollCount:  q.RerollCount,
		SlotIndex:    q.SlotIndex,
	}
}

func newQuestResponses(quests []*model.QuestInstance) []QuestResponse {
	out := make([]QuestResponse, len(quests))
	for i, q := range quests {
		out[i] = newQuestResponse(q)
	}
	return out
}

func newTemplateResponse(t *model.QuestTemplate) TemplateResponse {
	return TemplateResponse{
		ID:                  t.ID.String(),
		Title:               t.Title,
		Description:         t.Description,
		Type:                string(t.Type),
		Class:               t.Class,
		BaseXP:              t.BaseXP,
		BaseGold:            t.BaseGold,
		Enabled:             t.Enabled,
		Scaling:             t.Scaling,
		Level1Requirement:   t.Level1Requirement,
		Level100Requirement: t.Level100Requirement,
		RequirementCount:    t.RequirementCount,
		IsCustom:            t.IsCustom,
	}
}

func newTemplateResponses(templates []*model.QuestTemplate) []TemplateResponse {
	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = newTemplateResponse(t)
	}
	return out
}

func newLevelUpResponse(l service.LevelUpResult) LevelUpResponse {
	return LevelUpResponse{
		ClassID:   l.ClassID,
		LeveledUp: l.LeveledUp,
		NewLevel:  l.NewLevel,
		Levels:    l.Levels,
	}
}

func newWeeklyStatusResponse(s *service.WeeklyStatus, position int) WeeklyStatusResponse {
	return WeeklyStatusResponse{
		Eligible:       s.Eligible,
		Quests:         newQuestResponses(s.Quests),
		Completed:      s.Completed,
		Collectable:    s.Collectable,
		ExpiresAt:      s.ExpiresAt,
		ReferenceLevel: s.ReferenceLevel,
		Position:       position,
	}
}
