package service

import (
	"time"

	"github.com/robfig/cron/v3"
)

var resetParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var (
	dailyReset  = mustSchedule("0 0 * * *")
	weeklyReset = mustSchedule("0 0 * * 0")
)

func mustSchedule(spec string) cron.Schedule {
	sched, err := resetParser.Parse(spec)
	if err != nil {
		panic(err)
	}
	return sched
}

// NextDailyReset returns the next local midnight strictly after now.
func NextDailyReset(now time.Time, loc *time.Location) time.Time {
	return dailyReset.Next(now.In(loc))
}

// NextWeeklyReset returns the next Sunday 00:00 local strictly after now.
func NextWeeklyReset(now time.Time, loc *time.Location) time.Time {
	return weeklyReset.Next(now.In(loc))
}

// IsNewDay reports whether last and now fall on different local calendar dates.
func IsNewDay(last, now time.Time, loc *time.Location) bool {
	ly, lm, ld := last.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return ly != ny || lm != nm || ld != nd
}

// IsNewWeek reports whether last and now fall in different Sunday-anchored weeks.
func IsNewWeek(last, now time.Time, loc *time.Location) bool {
	return !StartOfWeek(last, loc).Equal(StartOfWeek(now, loc))
}

// StartOfWeek returns Sunday 00:00 local of the week containing t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc)
}
