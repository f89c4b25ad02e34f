package workflow

import (
	"context"
	"fmt"

	"github.com/enescc00/b2bsitesibitmis-sub000/models"
	"github.com/xuri/excelize/v2"
)

// ExportStatementXLSX renders a customer's statement as an Excel workbook for
// the back-office payment tracking screen. The caller owns closing the file.
func ExportStatementXLSX(ctx context.Context, customerId int) (*excelize.File, error) {
	customer, err := models.GetCustomer(ctx, customerId)
	if err != nil {
		return nil, err
	}
	statement, err := BuildStatement(ctx, customerId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Statement"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Account statement - %s", customer.Name)); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "A2", fmt.Sprintf("Opening balance: %s", customer.OpeningBalance.StringFixed(2))); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Source", "Description", "Amount", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, line := range statement {
		row := i + 5
		values := []interface{}{
			line.Date.Format("2006-01-02"),
			string(line.SourceType),
			line.Description,
			line.Amount.StringFixed(2),
			line.Balance.StringFixed(2),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	closing := customer.OpeningBalance
	if len(statement) > 0 {
		closing = statement[len(statement)-1].Balance
	}
	totalCell, _ := excelize.CoordinatesToCellName(5, len(statement)+6)
	if err := f.SetCellValue(sheet, totalCell, fmt.Sprintf("Closing balance: %s", closing.StringFixed(2))); err != nil {
		return nil, err
	}

	return f, nil
}
