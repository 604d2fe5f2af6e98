// Package routine extracts time-of-day triggers from free-text routine
// descriptions such as "Goes to school at 7:30 AM. Returns at 3:00 PM."
package routine

import (
	"regexp"
	"strconv"
	"strings"

	"homebase/internal/models"
)

var returnPattern = regexp.MustCompile(`Returns at (\d{1,2}):(\d{2}) ?([AaPp][Mm])`)

// ParseReturnTrigger returns the time-of-day of the first "Returns at H:MM AM|PM"
// phrase in text. The second result is false when no phrase is present or the
// first phrase holds an out-of-range clock value; later phrases are never consulted.
func ParseReturnTrigger(text string) (models.TimeOfDay, bool) {
	m := returnPattern.FindStringSubmatch(text)
	if m == nil {
		return models.TimeOfDay{}, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return models.TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return models.TimeOfDay{}, false
	}

	switch strings.ToUpper(m[3]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}

	return models.TimeOfDay{Hour: hour, Minute: minute}, true
}
