// Package export writes extracted business-brief fields to XLSX workbooks.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	"aura_backend/extraction"
)

// SheetName is the worksheet holding the extracted fields.
const SheetName = "Business Briefs"

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListSeparator joins the items of list fields in a single cell.
const ListSeparator = "; "

// maxCellRunes is the Excel limit on characters in one cell.
const maxCellRunes = 32767

// Row is one document's fields.
type Row struct {
	Filename string
	Fields   extraction.FieldSet
}

// Headers returns the column titles: the filename followed by every
// canonical field in presentation order.
func Headers() []string {
	fields := extraction.AllFields()
	headers := make([]string, 0, len(fields)+1)
	headers = append(headers, "Filename")
	for _, name := range fields {
		headers = append(headers, HeaderFor(name))
	}
	return headers
}

// HeaderFor turns a field key such as "impactOfDoNothing" into the column
// title "Impact Of Do Nothing".
func HeaderFor(name extraction.FieldName) string {
	var sb strings.Builder
	for i, r := range string(name) {
		switch {
		case i == 0:
			sb.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			sb.WriteByte(' ')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// CellValue renders one field for a cell. Missing fields are empty, lists
// are joined with ListSeparator and booleans become "Yes" or "No".
func CellValue(fields extraction.FieldSet, name extraction.FieldName) string {
	value, ok := fields.Get(name)
	if !ok {
		return ""
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case extraction.Priority:
		s = string(v)
	case []string:
		s = strings.Join(v, ListSeparator)
	case bool:
		s = "No"
		if v {
			s = "Yes"
		}
	default:
		s = fmt.Sprint(v)
	}
	if r := []rune(s); len(r) > maxCellRunes {
		s = string(r[:maxCellRunes])
	}
	return s
}

// WriteWorkbook returns an XLSX workbook with a header row and one row per
// document.
//
// Example:
//
//	data, err := WriteWorkbook([]Row{{Filename: "brief.pdf", Fields: result.Fields}})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("briefs.xlsx", data, 0o644)
func WriteWorkbook(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet rather than adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := Headers()
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(SheetName, "A1", last, style)
	}

	fields := extraction.AllFields()
	for r, row := range rows {
		values := make([]any, 0, len(headers))
		values = append(values, row.Filename)
		for _, name := range fields {
			values = append(values, CellValue(row.Fields, name))
		}
		start, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(SheetName, "A", "A", 28)
	_ = f.SetColWidth(SheetName, "B", lastCol, 32)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
