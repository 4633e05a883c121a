// Package xlsx renders ledger data as Excel workbooks and parses reception
// imports. It only reads ledger values.
package xlsx

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const dateLayout = "02/01/2006"

// sheet appends rows to one worksheet and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	err  error
}

func newSheet(f *excelize.File, name string) *sheet {
	if f.SheetCount == 1 && f.GetSheetName(0) == "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return &sheet{f: f, name: name, err: err}
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return &sheet{f: f, name: name, err: err}
	}
	return &sheet{f: f, name: name, row: 1}
}

func (s *sheet) write(vals ...any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetSheetRow(s.name, cell, &vals); err != nil {
		s.err = fmt.Errorf("%s row %d: %w", s.name, s.row, err)
		return
	}
	s.row++
}

func (s *sheet) blank() {
	if s.err == nil {
		s.row++
	}
}

func finish(f *excelize.File, sheets ...*sheet) ([]byte, error) {
	defer func() { _ = f.Close() }()
	for _, s := range sheets {
		if s.err != nil {
			return nil, s.err
		}
	}
	f.SetActiveSheet(0)
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
