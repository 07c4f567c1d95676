package bot

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// MaxDurationDays bounds a single order to one year of deliveries.
const MaxDurationDays = 365

var (
	ErrInvalidDuration = errors.New("duration must be a whole number of days from 1 to 365")

	phonePattern = regexp.MustCompile(`^(\+?7|8)?9\d{9}$`)

	noCommentSentinels = map[string]bool{
		"":    true,
		"-":   true,
		"_":   true,
		"нет": true,
	}
)

// ParseDuration accepts a whole number of days from 1 to MaxDurationDays.
func ParseDuration(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > MaxDurationDays {
		return 0, ErrInvalidDuration
	}
	return n, nil
}

// IsValidPhoneNumber matches a Russian mobile number: optional +7, 7 or 8,
// then 9 and nine more digits.
func IsValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// NormalizeComment maps the "no comment" answers to an empty comment and
// keeps anything else as typed.
func NormalizeComment(text string) string {
	if noCommentSentinels[strings.ToLower(strings.TrimSpace(text))] {
		return ""
	}
	return text
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
