// Package export renders an invoice statement as a spreadsheet for
// download or handoff to an accountant.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yogan/backoffice/internal/billing"
)

const sheetName = "Statement"

// StatementWriter builds .xlsx statements from derived invoice views
type StatementWriter struct {
	logger *zap.Logger
}

// NewStatementWriter creates a new statement writer
func NewStatementWriter(logger *zap.Logger) *StatementWriter {
	return &StatementWriter{logger: logger}
}

// Write renders the invoice view as a workbook and returns its bytes.
// The view is already fully derived, so this never touches storage.
func (w *StatementWriter) Write(view *billing.InvoiceView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	w.setCell(f, "A1", "Invoice")
	w.setCell(f, "B1", view.InvoiceID)
	w.setCell(f, "A2", "Customer")
	w.setCell(f, "B2", view.CustomerName)
	w.setCell(f, "A3", "Invoiced")
	w.setCell(f, "B3", view.InvoiceDateDisplay)
	w.setCell(f, "A4", "Due")
	w.setCell(f, "B4", view.DueDateDisplay)
	w.setCell(f, "A5", "Status")
	w.setCell(f, "B5", view.DueStatusDisplay)

	row := 7
	w.setCell(f, fmt.Sprintf("A%d", row), "Description")
	w.setCell(f, fmt.Sprintf("B%d", row), "Qty")
	w.setCell(f, fmt.Sprintf("C%d", row), "Unit Price")
	w.setCell(f, fmt.Sprintf("D%d", row), "Line Total")
	row++

	for _, li := range view.LineItems {
		w.setCell(f, fmt.Sprintf("A%d", row), li.Description)
		w.setCell(f, fmt.Sprintf("B%d", row), li.Quantity)
		w.setCell(f, fmt.Sprintf("C%d", row), li.UnitPrice.StringFixed(2))
		w.setCell(f, fmt.Sprintf("D%d", row), li.LineTotal.StringFixed(2))
		row++
	}

	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "Deposits")
	row++
	if len(view.Deposits) == 0 {
		w.setCell(f, fmt.Sprintf("A%d", row), "None")
		row++
	}
	for _, d := range view.Deposits {
		w.setCell(f, fmt.Sprintf("A%d", row), d.DepositDateDisplay)
		w.setCell(f, fmt.Sprintf("B%d", row), d.Note)
		w.setCell(f, fmt.Sprintf("D%d", row), d.Amount.StringFixed(2))
		row++
	}

	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "Total")
	w.setCell(f, fmt.Sprintf("D%d", row), view.TotalAmount.StringFixed(2))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "Paid")
	w.setCell(f, fmt.Sprintf("D%d", row), view.AmountPaid.StringFixed(2))
	row++
	w.setCell(f, fmt.Sprintf("A%d", row), "Amount Due")
	w.setCell(f, fmt.Sprintf("D%d", row), view.AmountDue.StringFixed(2))

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("Statement rendered",
		zap.String("invoice_id", view.InvoiceID),
		zap.Int("line_items", len(view.LineItems)),
		zap.Int("deposits", len(view.Deposits)))

	return buf.Bytes(), nil
}

func (w *StatementWriter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell", zap.String("cell", cell), zap.Error(err))
	}
}
