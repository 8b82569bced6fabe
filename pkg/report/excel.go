// pkg/report/excel.go
//
// Spreadsheet generation for the inventory snapshot.

package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/tower"
	"github.com/infraops/invreporter/pkg/xerr"
)

const sheetName = "Inventory Report"

var headers = []string{"Inventory Name", "Groups", "Server/Host FQDN", "IsEnabled", "Inventory ID"}

// Write renders the rows into a timestamped workbook under outDir and
// returns the file path.
func Write(rc *runctx.RuntimeContext, spk string, rows []tower.HostRow, outDir string) (string, error) {
	if len(rows) == 0 {
		return "", xerr.New(xerr.KindValidation, "no data to generate report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", xerr.Wrap(xerr.KindSystem, err, "initialize worksheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", xerr.Wrap(xerr.KindSystem, err, "create header style")
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", xerr.Wrap(xerr.KindSystem, err, "compute header cell")
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", xerr.Wrap(xerr.KindSystem, err, "write header cell")
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return "", xerr.Wrap(xerr.KindSystem, err, "style header cell")
		}
	}

	for i, row := range rows {
		values := []interface{}{row.Inventory, row.Group, row.HostFQDN, row.Enabled, row.InventoryID}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", xerr.Wrap(xerr.KindSystem, err, "compute data cell")
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", xerr.Wrap(xerr.KindSystem, err, "write data cell")
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "E", 25); err != nil {
		return "", xerr.Wrap(xerr.KindSystem, err, "set column widths")
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(outDir,
		fmt.Sprintf("ansible_inventory_%s_%s.xlsx", SanitizeFilename(spk), timestamp))

	if err := f.SaveAs(filename); err != nil {
		return "", xerr.Wrap(xerr.KindSystem, err, "save workbook")
	}

	rc.Log.Info("Report generated",
		zap.String("file", filename),
		zap.Int("rows", len(rows)),
	)
	return filename, nil
}
