package model

import (
	"time"

	"github.com/google/uuid"
)

type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	// QuestStatusExpired marks an instance superseded by a regeneration cycle.
	QuestStatusExpired QuestStatus = "expired"
	// QuestStatusCollected marks a weekly instance whose bundle reward was paid out.
	QuestStatusCollected QuestStatus = "collected"
)

type QuestInstance struct {
	ID               uuid.UUID
	TemplateID       uuid.UUID
	Type             QuestType
	TemplateType     QuestType
	Class            string
	Title            string
	Description      string
	RequirementCount int
	Progress         int
	ProgressGoal     int
	XPReward         int
	GoldReward       int
	Status           QuestStatus
	CreatedAt        time.Time
	ExpiresAt        time.Time
	CompletedAt      *time.Time
	ClassLevel       int
	RerollCount      int
	SlotIndex        int
}

func (q *QuestInstance) IsActive() bool {
	return q.Status == QuestStatusActive
}

// InPeriod reports whether the instance belongs to the cycle that is current at now.
func (q *QuestInstance) InPeriod(now time.Time) bool {
	return (q.Status == QuestStatusActive || q.Status == QuestStatusCompleted) && q.ExpiresAt.After(now)
}

type InstanceFilter struct {
	Type     QuestType
	Class    string
	Statuses []QuestStatus
}
