// Package validation provides the tag name normalizer and the input
// validators for tag names, calendar dates, and entry payloads.
package validation

import (
	"strings"
	"time"

	"github.com/rorticus/crohns-tracker-sub000/internal/domain"
)

// MaxTagNameLength is the longest accepted tag name after trimming.
const MaxTagNameLength = 50

// Normalize turns user-typed tag text into its canonical matching key:
// surrounding whitespace trimmed, lower-cased. Pure and idempotent.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// forbiddenTagChars are explicitly rejected with their own message so the UI
// can call out markup-looking input.
const forbiddenTagChars = `<>{}[]\/|"'`

// isAllowedTagChar reports whether r may appear in a tag name.
func isAllowedTagChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '_' || r == '-':
		return true
	}
	return false
}

// ValidateTagName checks the shape of a user-typed tag name. All violations
// are reported together. The input is never mutated; callers normalize
// separately.
func ValidateTagName(text string) ValidationErrors {
	var errs ValidationErrors

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		errs.Add("name", text, "tag name must not be empty")
		return errs
	}
	if len([]rune(trimmed)) > MaxTagNameLength {
		errs.Add("name", text, "tag name must be 50 characters or fewer")
	}

	reportedForbidden := false
	reportedCharset := false
	for _, r := range trimmed {
		if strings.ContainsRune(forbiddenTagChars, r) {
			if !reportedForbidden {
				errs.Add("name", text, `tag name must not contain any of < > { } [ ] \ / | " '`)
				reportedForbidden = true
			}
			continue
		}
		if !isAllowedTagChar(r) && !reportedCharset {
			errs.Add("name", text, "tag name may only contain letters, numbers, spaces, hyphens, and underscores")
			reportedCharset = true
		}
	}

	return errs
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// ValidateTime checks that s is a clock time in HH:MM form.
func ValidateTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// ValidateEntry checks an entry payload: known type, valid date and time,
// and the matching detail record with its scales in range.
func ValidateEntry(entryType, date, timeOfDay string, bm *domain.BowelMovement, note *domain.Note) ValidationErrors {
	var errs ValidationErrors

	switch entryType {
	case domain.EntryTypeBowelMovement:
		if bm == nil {
			errs.Add("bowelMovement", "", "bowel movement details are required")
			break
		}
		if bm.Consistency < domain.ConsistencyMin || bm.Consistency > domain.ConsistencyMax {
			errs.Add("bowelMovement.consistency", "", "consistency must be between 1 and 7")
		}
		if bm.Urgency < domain.UrgencyMin || bm.Urgency > domain.UrgencyMax {
			errs.Add("bowelMovement.urgency", "", "urgency must be between 1 and 4")
		}
	case domain.EntryTypeNote:
		if note == nil {
			errs.Add("note", "", "note details are required")
		} else if strings.TrimSpace(note.Content) == "" {
			errs.Add("note.content", note.Content, "note content must not be empty")
		}
	default:
		errs.Add("type", entryType, "type must be bowel_movement or note")
	}

	if err := ValidateDate(date); err != nil {
		errs.Add("date", date, "date must be a valid calendar date in YYYY-MM-DD form")
	}
	if err := ValidateTime(timeOfDay); err != nil {
		errs.Add("time", timeOfDay, "time must be in HH:MM form")
	}

	return errs
}
