package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 7, Minute: 5}, tod)
	assert.Equal(t, "07:05", tod.String())

	tod, err = ParseTimeOfDay("8:30")
	require.NoError(t, err)
	assert.Equal(t, "08:30", tod.String())

	for _, bad := range []string{"", "noon", "24:00", "12:60", "-1:30", "8:30 PM", "08:30x", "08:3", " 08:30"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeOfDayOn(t *testing.T) {
	ref := time.Date(2024, 3, 9, 22, 41, 13, 500, time.UTC)
	got := MustTimeOfDay("08:15").On(ref)
	assert.Equal(t, time.Date(2024, 3, 9, 8, 15, 0, 0, time.UTC), got)
}

func TestTimeOfDayScanAndJSON(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan([]byte("18:30")))
	assert.Equal(t, "18:30", tod.String())
	assert.Error(t, tod.Scan(42))
	assert.Error(t, tod.Scan("18:30:00"))

	v, err := tod.Value()
	require.NoError(t, err)
	assert.Equal(t, "18:30", v)

	b, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.JSONEq(t, `"18:30"`, string(b))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal([]byte(`"06:00"`), &back))
	assert.Equal(t, TimeOfDay{Hour: 6}, back)
	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &back))
}

func TestStringSlice(t *testing.T) {
	v, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var s StringSlice
	require.NoError(t, s.Scan(`["Keys","Wallet"]`))
	assert.True(t, s.Contains("Keys"))
	assert.False(t, s.Contains("keys"))

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}

func TestHistoryFilterMatches(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := HistoryEntry{User: "Alex", Timestamp: at}
	before := at.Add(-time.Hour)
	after := at.Add(time.Hour)

	assert.True(t, HistoryFilter{}.Matches(e))
	assert.True(t, HistoryFilter{User: "all"}.Matches(e))
	assert.False(t, HistoryFilter{User: "Leo"}.Matches(e))
	assert.True(t, HistoryFilter{From: &before, To: &after}.Matches(e))
	assert.False(t, HistoryFilter{From: &after}.Matches(e))
	assert.False(t, HistoryFilter{To: &before}.Matches(e))
}
