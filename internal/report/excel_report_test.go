package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

func TestWriteExcel(t *testing.T) {
	approved := entity.NewPurchaseRequest(2, "ou_bob", "Bob", "Monitor arm")
	approved.Status = entity.StatusApproved
	approved.ApproverName = "Carol"

	requests := []*entity.PurchaseRequest{
		entity.NewPurchaseRequest(1, "ou_alice", "Alice", "USB cable x2"),
		approved,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, requests))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	require.GreaterOrEqual(t, len(rows[1]), 4)
	assert.Equal(t, []string{"1", "Alice", "USB cable x2", "new"}, rows[1][:4])
	assert.Equal(t, []string{"2", "Bob", "Monitor arm", "approved", "Carol"}, rows[2])
}

func TestWriteExcel_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
