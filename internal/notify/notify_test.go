package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
)

type brokenNotifier struct {
	panics bool
}

func (b brokenNotifier) fail() error {
	if b.panics {
		panic("scheduler crashed")
	}
	return errors.New("scheduler unavailable")
}

func (b brokenNotifier) ScheduleBillReminder(context.Context, model.Bill) error { return b.fail() }
func (b brokenNotifier) SchedulePlannedReminder(context.Context, model.PlannedTransaction) error {
	return b.fail()
}
func (b brokenNotifier) CancelReminder(context.Context, string) error { return b.fail() }

func TestBestEffort_SwallowsFailures(t *testing.T) {
	ctx := context.Background()
	bill := model.Bill{ID: "b1"}
	planned := testutil.Planned("p1", "a", "1", "2024-06-01", model.RecurrenceNone)

	for _, panics := range []bool{false, true} {
		n := NewBestEffort(brokenNotifier{panics: panics})
		assert.NotPanics(t, func() {
			assert.NoError(t, n.ScheduleBillReminder(ctx, bill))
			assert.NoError(t, n.SchedulePlannedReminder(ctx, planned))
			assert.NoError(t, n.CancelReminder(ctx, "b1"))
		})
	}

	assert.NoError(t, NewBestEffort(nil).CancelReminder(ctx, "b1"))
}

func TestLogNotifier(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	bill := model.Bill{
		ID:               "b1",
		Name:             "Rent",
		Notify:           true,
		NotifyDaysBefore: 3,
		NextDueDate:      testutil.DatePtr("2024-07-01"),
		Status:           model.BillPending,
	}
	require.NoError(t, n.ScheduleBillReminder(ctx, bill))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Bill reminder scheduled", entry["msg"])
	assert.Equal(t, "2024-07-01", entry["due"])
	assert.Equal(t, "2024-06-28", entry["remind_at"])

	buf.Reset()
	bill.Notify = false
	require.NoError(t, n.ScheduleBillReminder(ctx, bill))
	assert.Contains(t, buf.String(), "Reminder cancelled")
}

func TestRemindAt(t *testing.T) {
	assert.Equal(t, testutil.Date("2024-02-28"), RemindAt(testutil.Date("2024-03-01"), 2))
	assert.Equal(t, testutil.Date("2024-03-01"), RemindAt(testutil.Date("2024-03-01"), 0))
}
