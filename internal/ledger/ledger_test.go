package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/jobs"
)

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "applied.csv"))
	require.NoError(t, err)
	return l
}

func record(link, status string) Record {
	return Record{
		Timestamp: time.Now(),
		Platform:  jobs.PlatformLinkedIn,
		Title:     "Senior Engineer",
		Company:   "Acme",
		Location:  "Remote",
		Link:      link,
		Status:    status,
	}
}

func TestOpen_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applied.csv")
	_, err := Open(path)
	require.NoError(t, err)

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Append(record("https://x/y", "APPLIED_AUTO")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "date,platform,title"))
}

func TestHasRecord_AnyStatusCounts(t *testing.T) {
	l := testLedger(t)

	found, err := l.HasRecord("https://x/y")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, l.Append(record("https://x/y", "REQUIRES_EXTERNAL")))

	found, err = l.HasRecord("https://x/y")
	require.NoError(t, err)
	assert.True(t, found, "a non-applied terminal status still marks the link as handled")

	found, err = l.HasRecord("https://x/other")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHasRecord_CaseSensitiveExactMatch(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Append(record("https://x/Job", "APPLIED_AUTO")))

	found, err := l.HasRecord("https://x/job")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCountToday_SubstringStatusFilter(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Append(record("https://x/1", "APPLIED_AUTO")))
	require.NoError(t, l.Append(record("https://x/2", "APPLIED_PARTIAL")))
	require.NoError(t, l.Append(record("https://x/3", "SKIPPED_LOW_MATCH")))

	// Yesterday's row must not count.
	old := record("https://x/4", "APPLIED_AUTO")
	old.Timestamp = time.Now().AddDate(0, 0, -1)
	require.NoError(t, l.Append(old))

	count, err := l.CountToday("APPLIED")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAppend_FieldsWithCommasSurviveRoundTrip(t *testing.T) {
	l := testLedger(t)
	rec := record("https://x/y", "APPLIED_AUTO")
	rec.Title = "Engineer, Platform (Go)"
	require.NoError(t, l.Append(rec))

	found, err := l.HasRecord("https://x/y")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSlots(t *testing.T) {
	s, err := OpenSlots(filepath.Join(t.TempDir(), "slots.csv"))
	require.NoError(t, err)

	done, err := s.IsDone("2026-08-29", "daily-summary")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkDone("2026-08-29", "daily-summary"))

	done, err = s.IsDone("2026-08-29", "daily-summary")
	require.NoError(t, err)
	assert.True(t, done)

	// Same slot on another date is independent.
	done, err = s.IsDone("2026-08-30", "daily-summary")
	require.NoError(t, err)
	assert.False(t, done)
}
