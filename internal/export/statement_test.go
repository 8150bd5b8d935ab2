package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/billing"
	"github.com/yogan/backoffice/internal/models"
)

func TestStatementWriter_Write(t *testing.T) {
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:          "inv-1",
		CustomerID:  "cust-1",
		InvoiceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     &due,
		Customer:    &models.Customer{ID: "cust-1", Name: "Santa Monica"},
		LineItems: []models.LineItem{
			{ID: "li-1", Description: "Design work", Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
		},
		Deposits: []models.Deposit{
			{ID: "dep-1", Amount: decimal.RequireFromString("30.00"), DepositDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Note: "first installment"},
		},
	}

	view, err := billing.BuildInvoiceView(inv, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	writer := NewStatementWriter(zap.NewNop())
	data, err := writer.Write(view)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue("Statement", ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Santa Monica", cell("B2"))
	assert.Equal(t, "Due 4/1/2024", cell("B5"))
	assert.Equal(t, "Design work", cell("A8"))
	assert.Equal(t, "100.00", cell("D8"))
}

func TestStatementWriter_NoDeposits(t *testing.T) {
	inv := &models.Invoice{
		ID:          "inv-2",
		InvoiceDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Customer:    &models.Customer{ID: "cust-1", Name: "Acme"},
		LineItems: []models.LineItem{
			{ID: "li-1", Description: "Rush delivery", Quantity: 1, UnitPrice: decimal.RequireFromString("40.00")},
		},
	}

	view, err := billing.BuildInvoiceView(inv, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	writer := NewStatementWriter(zap.NewNop())
	data, err := writer.Write(view)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Statement", "B4")
	require.NoError(t, err)
	assert.Equal(t, "On receipt", v)

	rows, err := f.GetRows("Statement")
	require.NoError(t, err)

	flat := ""
	for _, row := range rows {
		for _, c := range row {
			flat += c + "|"
		}
	}
	assert.Contains(t, flat, "None")
	assert.Contains(t, flat, "Amount Due")
	assert.Contains(t, flat, "40.00")
}
