package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0:00:00"},
		{59, "0:00:59"},
		{60, "0:01:00"},
		{3725, "1:02:05"},
		{36000, "10:00:00"},
		{-5, "0:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			got := FormatDuration(time.Duration(tc.seconds) * time.Second)
			if got != tc.want {
				t.Errorf("FormatDuration(%ds) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	logger := NewLogger(path)

	exitTime := time.Date(2024, 3, 15, 17, 30, 5, 0, time.Local)
	require.NoError(t, logger.Append(Record{
		PersonID: 7,
		Name:     "Alice",
		ExitTime: exitTime,
		Duration: 3725 * time.Second,
	}))
	require.NoError(t, logger.Append(Record{
		PersonID: 9,
		Name:     "Bob",
		ExitTime: exitTime.Add(time.Minute),
		Duration: 90 * time.Second,
	}))

	records, err := logger.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, uint(7), records[0].PersonID)
	assert.Equal(t, "Alice", records[0].Name)
	assert.True(t, records[0].ExitTime.Equal(exitTime))
	assert.InDelta(t, 3725, records[0].Duration.Seconds(), 0.01)

	assert.Equal(t, "Bob", records[1].Name)
	assert.InDelta(t, 90, records[1].Duration.Seconds(), 0.01)
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	logger := NewLogger(path)

	rec := Record{PersonID: 1, Name: "Alice", ExitTime: time.Now(), Duration: time.Minute}
	require.NoError(t, logger.Append(rec))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, logger.Append(rec))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	// the earlier line is untouched; the file only grows
	assert.True(t, strings.HasPrefix(string(second), string(first)))
	assert.Len(t, strings.Split(strings.TrimSpace(string(second)), "\n"), 2)
}

func TestLineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	logger := NewLogger(path)

	exitTime := time.Date(2024, 3, 15, 17, 30, 5, 0, time.Local)
	require.NoError(t, logger.Append(Record{
		PersonID: 3,
		Name:     "Carol",
		ExitTime: exitTime,
		Duration: 3725 * time.Second,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3,Carol,2024-03-15 17:30:05,3725.00,1:02:05\n", string(data))
}

func TestReadAllMissingFile(t *testing.T) {
	logger := NewLogger(filepath.Join(t.TempDir(), "nope.csv"))
	records, err := logger.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadAllSkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	content := "garbage line\n5,Eve,2024-03-15 17:30:05,60.00,0:01:00\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	records, err := NewLogger(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Eve", records[0].Name)
}

func TestNameWithCommaRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(Record{
		PersonID: 2,
		Name:     "Smith, Jr",
		ExitTime: time.Date(2024, 3, 15, 17, 30, 5, 0, time.Local),
		Duration: time.Minute,
	}))

	records, err := logger.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Smith, Jr", records[0].Name)
}
