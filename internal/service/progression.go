package service

import "levelup/internal/model"

type LevelUpResult struct {
	ClassID   string
	LeveledUp bool
	NewLevel  int
	Levels    int
}

// AwardXP adds amount to the class and applies every level-up it pays for.
// All level-ups of one award consume the threshold that was in force when
// the award started; the threshold is then recomputed for the final level.
func AwardXP(c *model.CharacterClass, amount int) LevelUpResult {
	res := LevelUpResult{ClassID: c.ID, NewLevel: c.Level}
	if c.Level >= model.MaxLevel {
		pinMaxLevel(c)
		res.NewLevel = c.Level
		return res
	}
	if amount <= 0 {
		return res
	}

	threshold := c.XPToNextLevel
	if threshold <= 0 {
		threshold = XPToNextLevel(c.Level)
	}

	c.CurrentXP += amount
	for c.CurrentXP >= threshold && c.Level < model.MaxLevel {
		c.CurrentXP -= threshold
		c.Level++
		res.Levels++
	}

	if c.Level >= model.MaxLevel {
		pinMaxLevel(c)
	} else {
		c.XPToNextLevel = XPToNextLevel(c.Level)
	}

	res.LeveledUp = res.Levels > 0
	res.NewLevel = c.Level
	return res
}

func pinMaxLevel(c *model.CharacterClass) {
	c.Level = model.MaxLevel
	c.CurrentXP = 0
	c.XPToNextLevel = 0
}
