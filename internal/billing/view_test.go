package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogan/backoffice/internal/models"
)

func TestBuildInvoiceView(t *testing.T) {
	inv := invoiceWith(
		[]models.LineItem{
			{ID: "li-1", Description: "Design work", Quantity: 2, UnitPrice: dec("50.00")},
			{ID: "li-2", Description: "Hosting", Quantity: 1, UnitPrice: dec("25.00")},
		},
		[]models.Deposit{
			{ID: "dep-1", Amount: dec("30.00"), DepositDate: day("2024-03-10"), Note: "first installment"},
		},
	)
	inv.DueDate = dayPtr("2024-04-01")
	inv.Customer = &models.Customer{ID: "cust-1", Name: "Santa Monica"}

	view, err := BuildInvoiceView(inv, day("2024-03-15"))
	require.NoError(t, err)

	assert.Equal(t, "inv-1", view.InvoiceID)
	assert.Equal(t, "cust-1", view.CustomerID)
	assert.Equal(t, "Santa Monica", view.CustomerName)
	assert.True(t, view.TotalAmount.Equal(dec("125")))
	assert.True(t, view.AmountPaid.Equal(dec("30")))
	assert.True(t, view.AmountDue.Equal(dec("95")))
	assert.Equal(t, DueStatusDue, view.DueStatus)
	assert.Equal(t, "Due 4/1/2024", view.DueStatusDisplay)
	assert.Equal(t, "3/1/2024", view.InvoiceDateDisplay)
	assert.Equal(t, "4/1/2024", view.DueDateDisplay)

	require.Len(t, view.LineItems, 2)
	assert.Equal(t, "Design work", view.LineItems[0].Description)
	assert.True(t, view.LineItems[0].LineTotal.Equal(dec("100")))

	require.Len(t, view.Deposits, 1)
	assert.Equal(t, "3/10/2024", view.Deposits[0].DepositDateDisplay)
	assert.Equal(t, "first installment", view.Deposits[0].Note)
}

func TestBuildInvoiceView_DueOnReceipt(t *testing.T) {
	inv := invoiceWith([]models.LineItem{{ID: "li-1", Quantity: 1, UnitPrice: dec("10.00")}}, nil)
	inv.Customer = &models.Customer{ID: "cust-1", Name: "Acme"}

	view, err := BuildInvoiceView(inv, day("2024-03-15"))
	require.NoError(t, err)

	assert.Equal(t, DueStatusDue, view.DueStatus)
	assert.Equal(t, "Due on receipt", view.DueStatusDisplay)
	assert.Equal(t, "On receipt", view.DueDateDisplay)
	assert.Nil(t, view.DueDate)
}

func TestBuildInvoiceView_MissingCustomer(t *testing.T) {
	inv := invoiceWith(nil, nil)

	_, err := BuildInvoiceView(inv, day("2024-03-15"))
	assert.ErrorIs(t, err, ErrInvalidInvoiceData)
}

func TestBuildInvoiceView_CorruptLineItem(t *testing.T) {
	inv := invoiceWith([]models.LineItem{{ID: "li-1", Quantity: 1, UnitPrice: dec("-3.00")}}, nil)
	inv.Customer = &models.Customer{ID: "cust-1", Name: "Acme"}

	_, err := BuildInvoiceView(inv, day("2024-03-15"))
	assert.ErrorIs(t, err, ErrInvalidInvoiceData)
}
