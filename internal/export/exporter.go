package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

// Exporter writes report payloads as xlsx workbooks and csv files under
// the configured export directory.
type Exporter struct {
	dir string

	now func() time.Time
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// filePath builds a timestamped filename so repeated exports never
// clobber each other.
func (e *Exporter) filePath(prefix, ext string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export directory %s: %w", e.dir, err)
	}
	name := fmt.Sprintf("%s_%s.%s", prefix, e.now().Format("20060102_150405"), ext)
	return filepath.Join(e.dir, name), nil
}

// Row fill colors, matching the on-screen treeview tags: kits forest
// green with white text, modules light blue. The statement adds red for
// shortages and green for overstock.
const (
	kitFillColor       = "228B22"
	moduleFillColor    = "ADD8E6"
	shortageFillColor  = "FFCCCC"
	overstockFillColor = "CCFFCC"
	headerFillColor    = "2C3E50"
)

// sheetStyles holds the style ids registered once per workbook.
type sheetStyles struct {
	header    int
	kit       int
	module    int
	shortage  int
	overstock int
}

func registerStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return s, err
	}
	s.kit, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{kitFillColor}},
	})
	if err != nil {
		return s, err
	}
	s.module, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{moduleFillColor}},
	})
	if err != nil {
		return s, err
	}
	s.shortage, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{shortageFillColor}},
	})
	if err != nil {
		return s, err
	}
	s.overstock, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{overstockFillColor}},
	})
	return s, err
}

// newWorkbook creates a single-sheet workbook with the header row styled
// and frozen.
func newWorkbook(sheet string, header []string) (*excelize.File, sheetStyles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, sheetStyles{}, err
	}

	styles, err := registerStyles(f)
	if err != nil {
		return nil, sheetStyles{}, err
	}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return nil, sheetStyles{}, err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, sheetStyles{}, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
		return nil, sheetStyles{}, err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, sheetStyles{}, err
	}

	return f, styles, nil
}

// setRow writes one data row at the given 1-based row index, optionally
// applying a fill style across its width.
func setRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return err
	}
	if style > 0 {
		end, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return err
		}
		return f.SetCellStyle(sheet, start, end, style)
	}
	return nil
}
