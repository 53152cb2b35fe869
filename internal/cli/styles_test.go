package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "12.50", Money(testutil.Money("12.5")))
	assert.Equal(t, "-0.10", Money(testutil.Money("-0.1")))
	assert.Equal(t, "0.00", Money(testutil.Money("0")))
}

func TestFormatters_KeepText(t *testing.T) {
	assert.Contains(t, FormatBalance(testutil.Money("-3")), "-3.00")
	assert.Contains(t, FormatSigned(model.TypeExpense, testutil.Money("4")), "-4.00")
	assert.Contains(t, FormatSigned(model.TypeIncome, testutil.Money("4")), "+4.00")
	assert.Contains(t, FormatSigned(model.TypeTransfer, testutil.Money("4")), "4.00")
	assert.Contains(t, FormatBillStatus(model.BillOverdue), "overdue")
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon+" saved")
	assert.Contains(t, RenderBox("Summary", "3 created"), "3 created")
}

func TestNewProgressBar(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 3, "Importing")
	for range 3 {
		require.NoError(t, bar.Add(1))
	}
	assert.True(t, bar.IsFinished())
}
