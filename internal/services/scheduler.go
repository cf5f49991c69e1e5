package services

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const (
	FrequencyImmediate = "immediate"
	FrequencyDaily     = "daily"
	FrequencyCustom    = "custom"
	FrequencyWeekdays  = "3-5week"
)

const (
	defaultStartMinute = 9 * 60
	defaultEndMinute   = 17 * 60
	windowSearchDays   = 14
)

// PostingConfig is a user's posting-cadence configuration.
type PostingConfig struct {
	Frequency string
	Days      []string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

// Rand supplies the random minute within a posting window. Tests inject a
// seeded source; passing nil uses the global entropy source.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// NextPostTime computes when a queued post may next go out. Unrecognized
// frequencies degrade to immediate rather than erroring.
func NextPostTime(now time.Time, cfg PostingConfig, rng Rand) time.Time {
	if rng == nil {
		rng = globalRand{}
	}
	switch cfg.Frequency {
	case FrequencyImmediate:
		return now
	case FrequencyDaily:
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, now.Location())
	case FrequencyWeekdays:
		cfg.Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
		return searchWindow(now, cfg, rng)
	case FrequencyCustom:
		return searchWindow(now, cfg, rng)
	default:
		return now
	}
}

// searchWindow scans forward day-by-day for up to 14 days and returns a
// uniformly random minute inside [start,end) on the first allowed day that
// yields a timestamp strictly after now.
func searchWindow(now time.Time, cfg PostingConfig, rng Rand) time.Time {
	allowed := allowedWeekdays(cfg.Days)
	start := parseClockMinute(cfg.StartTime, defaultStartMinute)
	end := parseClockMinute(cfg.EndTime, defaultEndMinute)
	if end <= start {
		end = start + 1
	}

	for i := 0; i < windowSearchDays; i++ {
		day := now.AddDate(0, 0, i)
		if !allowed[day.Weekday()] {
			continue
		}
		minute := start + rng.Intn(end-start)
		candidate := time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, now.Location())
		if candidate.After(now) {
			return candidate
		}
	}
	return now.Add(24 * time.Hour)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func allowedWeekdays(days []string) map[time.Weekday]bool {
	allowed := map[time.Weekday]bool{}
	for _, day := range days {
		if weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(day))]; ok {
			allowed[weekday] = true
		}
	}
	return allowed
}

// parseClockMinute turns "HH:MM" into a minute-of-day, falling back on any
// malformed input.
func parseClockMinute(raw string, fallback int) int {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return fallback
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return fallback
	}
	return hour*60 + minute
}

// CanPostToday reports whether the user is still under their daily posting
// limit. "unlimited" always passes; a limit that fails to parse counts as 1.
func CanPostToday(counter PostCounter, userID, maxPerDay string, now time.Time) (bool, error) {
	if strings.EqualFold(strings.TrimSpace(maxPerDay), "unlimited") {
		return true, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(maxPerDay))
	if err != nil {
		limit = 1
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := counter.CountPostedSince(userID, midnight)
	if err != nil {
		return false, err
	}
	return count < limit, nil
}
