package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestType string

const (
	QuestTypeDaily  QuestType = "Daily"
	QuestTypeWeekly QuestType = "Weekly"
)

func (t QuestType) Valid() bool {
	return t == QuestTypeDaily || t == QuestTypeWeekly
}

type QuestTemplate struct {
	ID                  uuid.UUID
	Title               string
	Description         string
	Type                QuestType
	Class               string
	BaseXP              int
	BaseGold            int
	Enabled             bool
	Scaling             bool
	Level1Requirement   *int
	Level100Requirement *int
	RequirementCount    int
	IsCustom            bool
	CreatedAt           time.Time
}

// SameIdentity reports whether two templates describe the same catalog entry.
func (t *QuestTemplate) SameIdentity(o *QuestTemplate) bool {
	return t.Title == o.Title && t.Class == o.Class && t.Type == o.Type
}

type TemplateFilter struct {
	Type        QuestType
	Class       string
	EnabledOnly bool
	CustomOnly  bool
}
