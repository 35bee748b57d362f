package model

import "time"

const (
	PlayerID = "player"

	// WeeklyOrderEntry marks where the weekly bundle sits in a class order.
	WeeklyOrderEntry = "Weekly"
)

type User struct {
	ID                  string
	Gold                int
	TotalXP             int
	DailyRerollCount    int
	LastRerollReset     time.Time
	CreatedAt           time.Time
	LastActive          time.Time
	LastWeeklyGenerated *time.Time
	ClassOrder          []string
}
