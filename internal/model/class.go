package model

import "time"

const (
	MinLevel = 1
	MaxLevel = 100

	BaseDailyQuestSlots = 2
)

type CharacterClass struct {
	ID              string
	Name            string
	Level           int
	CurrentXP       int
	XPToNextLevel   int
	IsUnlocked      bool
	UnlockedAt      *time.Time
	DailyQuestSlots int
	Slot3Unlocked   bool
	Slot4Unlocked   bool
	Slot5Unlocked   bool
	SortIndex       int
}

// Slot identifies one of the purchasable daily quest slots.
type Slot int

const (
	Slot3 Slot = iota + 3
	Slot4
	Slot5
)

func (s Slot) String() string {
	switch s {
	case Slot3:
		return "slot3"
	case Slot4:
		return "slot4"
	case Slot5:
		return "slot5"
	default:
		return "unknown"
	}
}

func ParseSlot(s string) (Slot, bool) {
	switch s {
	case "slot3", "3":
		return Slot3, true
	case "slot4", "4":
		return Slot4, true
	case "slot5", "5":
		return Slot5, true
	default:
		return 0, false
	}
}

func (c *CharacterClass) SlotUnlocked(s Slot) bool {
	switch s {
	case Slot3:
		return c.Slot3Unlocked
	case Slot4:
		return c.Slot4Unlocked
	case Slot5:
		return c.Slot5Unlocked
	default:
		return false
	}
}

func (c *CharacterClass) SetSlotUnlocked(s Slot) {
	switch s {
	case Slot3:
		c.Slot3Unlocked = true
	case Slot4:
		c.Slot4Unlocked = true
	case Slot5:
		c.Slot5Unlocked = true
	}
}
