package service

import (
	"math"

	"levelup/internal/model"
)

const (
	xpPerLevel = 100

	ClassUnlockCost   = 200
	WeeklyMultiplier  = 3
	WeeklyBundleSize  = 5
	maxRerollDoubling = 40
)

var rerollTiers = []int{10, 25, 50, 100, 200, 400}

type slotRule struct {
	cost  int
	level int
}

var slotRules = map[model.Slot]slotRule{
	model.Slot3: {cost: 50, level: 5},
	model.Slot4: {cost: 100, level: 10},
	model.Slot5: {cost: 150, level: 15},
}

// XPToNextLevel returns the experience needed to leave level; 0 at the cap.
func XPToNextLevel(level int) int {
	if level >= model.MaxLevel {
		return 0
	}
	return clampLevel(level) * xpPerLevel
}

func clampLevel(level int) int {
	if level < model.MinLevel {
		return model.MinLevel
	}
	if level > model.MaxLevel {
		return model.MaxLevel
	}
	return level
}

// Interpolate maps level onto the line from min at level 1 to max at level 100.
func Interpolate(level, min, max int) int {
	level = clampLevel(level)
	t := float64(level-model.MinLevel) / float64(model.MaxLevel-model.MinLevel)
	return int(math.Round(float64(min) + float64(max-min)*t))
}

// RequirementFor returns the progress goal of a quest generated from t at level.
func RequirementFor(t *model.QuestTemplate, level int) int {
	if t.Scaling && t.Level1Requirement != nil && t.Level100Requirement != nil {
		if goal := Interpolate(level, *t.Level1Requirement, *t.Level100Requirement); goal > 1 {
			return goal
		}
		return 1
	}
	if t.RequirementCount < 1 {
		return 1
	}
	return t.RequirementCount
}

// RewardScale grows linearly from 1x at level 1 to 10x at level 100.
func RewardScale(level int) float64 {
	return 1 + float64(clampLevel(level)-1)/11
}

func ScaleReward(base, level int) int {
	return int(math.Round(float64(base) * RewardScale(level)))
}

// RerollCost is the price of the next reroll after count rerolls today.
func RerollCost(count int) int {
	if count < 0 {
		count = 0
	}
	if count < len(rerollTiers) {
		return rerollTiers[count]
	}

	last := rerollTiers[len(rerollTiers)-1]
	exp := count - (len(rerollTiers) - 1)
	if exp > maxRerollDoubling {
		exp = maxRerollDoubling
	}
	return last << exp
}

func SlotCost(s model.Slot) int {
	return slotRules[s].cost
}

func SlotRequiredLevel(s model.Slot) int {
	return slotRules[s].level
}
