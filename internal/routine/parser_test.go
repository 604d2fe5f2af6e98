package routine

import (
	"testing"

	"homebase/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseReturnTrigger(t *testing.T) {
	cases := []struct {
		name string
		text string
		want models.TimeOfDay
		ok   bool
	}{
		{"evening return", "Returns at 6:00 PM", models.TimeOfDay{Hour: 18}, true},
		{"midnight", "Returns at 12:00 AM", models.TimeOfDay{}, true},
		{"noon stays noon", "Returns at 12:15 PM", models.TimeOfDay{Hour: 12, Minute: 15}, true},
		{"morning", "Returns at 9:05 AM", models.TimeOfDay{Hour: 9, Minute: 5}, true},
		{"lowercase meridiem", "Returns at 3:00 pm", models.TimeOfDay{Hour: 15}, true},
		{"embedded in routine", "Goes to school at 7:30 AM. Returns at 3:00 PM.", models.TimeOfDay{Hour: 15}, true},
		{"no space before meridiem", "Returns at 4:45PM", models.TimeOfDay{Hour: 16, Minute: 45}, true},
		{"no phrase", "no time here", models.TimeOfDay{}, false},
		{"walk routine has no return", "Morning walk at 7:00 AM. Evening stroll at 5:00 PM.", models.TimeOfDay{}, false},
		{"single digit minute rejected", "Returns at 6:0 PM", models.TimeOfDay{}, false},
		{"hour out of range", "Returns at 13:00 PM", models.TimeOfDay{}, false},
		{"minute out of range", "Returns at 6:75 PM", models.TimeOfDay{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseReturnTrigger(tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseReturnTriggerFirstMatchWins(t *testing.T) {
	got, ok := ParseReturnTrigger("Returns at 5:30 PM on weekdays. Returns at 1:00 PM on Saturdays.")
	assert.True(t, ok)
	assert.Equal(t, models.TimeOfDay{Hour: 17, Minute: 30}, got)
}

func TestParseReturnTriggerInvalidFirstMatchIsNone(t *testing.T) {
	_, ok := ParseReturnTrigger("Returns at 14:00 PM. Returns at 2:00 PM.")
	assert.False(t, ok)
}
