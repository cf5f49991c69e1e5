package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"
)

// Keywords that mark a template as weekend-only copy. Matching is on the
// lowercased template text.
var weekendKeywords = []string{
	"weekend sale",
	"weekend special",
	"weekend only",
	"this weekend",
	"saturday sale",
	"saturday special",
}

const DefaultRecencyWindow = 10 * 24 * time.Hour

// Selection is the outcome of a template choice. Template is nil when no
// candidate passed; that is a normal result and the caller reschedules.
type Selection struct {
	Template *string
	Reason   string
}

// Selector picks the first candidate template that is day-appropriate and
// not recently used, then records the use. Manual selections bypass both
// checks.
type Selector struct {
	Store         UsageStore
	RecencyWindow time.Duration
	Now           func() time.Time
}

func NewSelector(store UsageStore) *Selector {
	return &Selector{Store: store, RecencyWindow: DefaultRecencyWindow, Now: time.Now}
}

// TemplateHash is the identity used for recency lookups: SHA-256 of the
// lowercased, trimmed template text.
func TemplateHash(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

func (s *Selector) Select(userID string, templates []string, scheduledDate time.Time, isManual bool, buildingSerial string) Selection {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	window := s.RecencyWindow
	if window <= 0 {
		window = DefaultRecencyWindow
	}

	rejections := []string{}
	for i, template := range templates {
		dayReason := "day ok"
		if isManual {
			dayReason = "manual post, day check bypassed"
		} else if isWeekendTemplate(template) && !isWeekendDay(scheduledDate) {
			rejections = append(rejections, fmt.Sprintf("template %d: weekend copy blocked on %s", i+1, scheduledDate.Weekday()))
			continue
		}

		recencyReason := "manual post, recency check bypassed"
		if !isManual {
			used, err := s.Store.HasRecentUsage(userID, TemplateHash(template), now.Add(-window))
			if err != nil {
				// A failed lookup must not block the posting pipeline.
				log.Printf("template recency lookup: %v", err)
				used = false
			}
			if used {
				rejections = append(rejections, fmt.Sprintf("template %d: used within the last %d days", i+1, int(window.Hours()/24)))
				continue
			}
			recencyReason = fmt.Sprintf("not used in the last %d days", int(window.Hours()/24))
		}

		s.recordUsage(userID, template, isManual, buildingSerial, now)
		chosen := template
		return Selection{Template: &chosen, Reason: dayReason + "; " + recencyReason}
	}

	if isManual && len(templates) > 0 {
		chosen := templates[0]
		s.recordUsage(userID, chosen, true, buildingSerial, now)
		return Selection{Template: &chosen, Reason: "manual override: all candidates blocked, using first template"}
	}

	reason := "no templates available"
	if len(rejections) > 0 {
		reason = strings.Join(rejections, "; ")
	}
	return Selection{Template: nil, Reason: reason}
}

func (s *Selector) recordUsage(userID, template string, isManual bool, buildingSerial string, usedAt time.Time) {
	err := s.Store.RecordUsage(userID, template, TemplateHash(template), isManual, buildingSerial, usedAt)
	if err != nil {
		// Recording is a side channel; failures are logged, never propagated.
		log.Printf("record template usage: %v", err)
	}
}

func isWeekendTemplate(template string) bool {
	lowered := strings.ToLower(template)
	for _, keyword := range weekendKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func isWeekendDay(date time.Time) bool {
	return date.Weekday() == time.Friday || date.Weekday() == time.Saturday
}
