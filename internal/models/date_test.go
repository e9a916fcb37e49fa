package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.February, Day: 29}, d)
	assert.Equal(t, "2024-02-29", d.String())

	empty, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestDate_AddDaysCrossesMonthAndYear(t *testing.T) {
	d := Date{Year: 2023, Month: time.December, Day: 28}
	assert.Equal(t, "2024-01-04", d.AddDays(7).String())
	assert.Equal(t, "2023-12-27", d.AddDays(-1).String())
}

func TestDate_DaysSince(t *testing.T) {
	a := Date{Year: 2024, Month: time.March, Day: 1}
	b := Date{Year: 2024, Month: time.February, Day: 28}

	assert.Equal(t, 2, a.DaysSince(b))
	assert.Equal(t, -2, b.DaysSince(a))
	assert.True(t, b.Before(a))
	assert.True(t, a.After(b))
	assert.False(t, a.Before(a))
}

func TestDate_ValueAndScan(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = Date{Year: 2024, Month: time.January, Day: 8}.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", v)

	var d Date
	require.NoError(t, d.Scan("2024-01-08"))
	assert.Equal(t, "2024-01-08", d.String())

	require.NoError(t, d.Scan([]byte("2025-06-30")))
	assert.Equal(t, "2025-06-30", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Due Date `json:"due"`
	}{Due: Date{Year: 2024, Month: time.July, Day: 4}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-07-04"}`, string(b))

	var out struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-07-05"}`), &out))
	assert.Equal(t, 5, out.Due.Day)
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("1")
	require.NoError(t, err)
	assert.Equal(t, PriorityUrgent, p)

	for _, raw := range []string{"0", "4", "urgent", ""} {
		_, err := ParsePriority(raw)
		assert.Error(t, err, raw)
	}
}
