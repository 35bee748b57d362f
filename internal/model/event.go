package model

import "time"

type EventType string

const (
	EventLevelUp           EventType = "level_up"
	EventClassUnlocked     EventType = "class_unlocked"
	EventSlotUnlocked      EventType = "slot_unlocked"
	EventQuestCompleted    EventType = "quest_completed"
	EventDailyRegenerated  EventType = "daily_regenerated"
	EventWeeklyRegenerated EventType = "weekly_regenerated"
	EventWeeklyCollected   EventType = "weekly_collected"
	EventTemplatesSynced   EventType = "templates_synced"
)

type Event struct {
	Type    EventType      `json:"type"`
	Class   string         `json:"class,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}
