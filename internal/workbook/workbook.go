package workbook

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/parser"
)

const sheetName = "Presales Analysis"

// Column widths by semantic role. Remark columns carry multi-line prose and
// get the widest layout.
const (
	widthRemark   = 80.0
	widthResponse = 25.0
	widthDefault  = 30.0

	dataRowHeight = 80.0

	// styledRowCap bounds how many data rows get per-cell styling, so a
	// huge sheet does not balloon the file with style records.
	styledRowCap = 1000
)

// Table is a parsed spreadsheet: normalized column names plus one cell map
// per data row.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Read parses spreadsheet bytes into a Table. Column names are trimmed and
// uppercased; columns with empty headers are dropped. A file that does not
// parse as a spreadsheet yields a validation error.
func Read(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewValidation("file does not parse as a spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidation("spreadsheet contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.NewValidation("failed to read sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, domain.NewValidation("spreadsheet is empty")
	}

	header := rows[0]
	columns := make([]string, 0, len(header))
	indexes := make([]int, 0, len(header))
	for i, name := range header {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		columns = append(columns, name)
		indexes = append(indexes, i)
	}
	if len(columns) == 0 {
		return nil, domain.NewValidation("spreadsheet has no named columns")
	}

	table := &Table{Columns: columns}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(columns))
		for j, col := range columns {
			idx := indexes[j]
			if idx < len(raw) {
				row[col] = strings.TrimSpace(raw[idx])
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Write renders the table as a styled spreadsheet: bold white-on-blue
// header, role-based column widths, and wrapped top-left aligned data cells
// with a generous row height for multi-line remarks.
func Write(table *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5597"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top", Horizontal: "left"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create data style: %w", err)
	}

	for i, col := range table.Columns {
		letter, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve column name: %w", err)
		}

		cell := letter + "1"
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}

		if err := f.SetColWidth(sheetName, letter, letter, columnWidth(col)); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range table.Rows {
		excelRow := r + 2
		for c, col := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, excelRow)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, row[col]); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}

		if r < styledRowCap {
			if err := f.SetRowHeight(sheetName, excelRow, dataRowHeight); err != nil {
				return nil, fmt.Errorf("failed to set row height: %w", err)
			}
			first, _ := excelize.CoordinatesToCellName(1, excelRow)
			last, _ := excelize.CoordinatesToCellName(len(table.Columns), excelRow)
			if err := f.SetCellStyle(sheetName, first, last, dataStyle); err != nil {
				return nil, fmt.Errorf("failed to style row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidth(col string) float64 {
	switch parser.Classify(col) {
	case parser.RoleRemark:
		return widthRemark
	case parser.RoleResponse:
		return widthResponse
	default:
		return widthDefault
	}
}
