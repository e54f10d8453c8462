package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// Store reads and writes a dataset as a single-sheet XLSX workbook.
type Store struct {
	Path   string
	Sheet  string
	logger *slog.Logger
}

func NewStore(path, sheet string, logger *slog.Logger) *Store {
	if sheet == "" {
		sheet = constants.DefaultSheetName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Path: path, Sheet: sheet, logger: logger}
}

// Load reads the workbook like Read and additionally requires the rows to be
// identifiable. Failures are *common.DatasetMergeError.
func (s *Store) Load() (*Dataset, error) {
	d, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, &common.DatasetMergeError{Path: s.Path, Err: err}
	}
	return d, nil
}

// Read returns the sheet as is. A missing file is an empty dataset. The
// configured sheet is used when present, otherwise the first sheet.
func (s *Store) Read() (*Dataset, error) {
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("dataset.load.missing", "path", s.Path)
			return New(), nil
		}
		return nil, &common.DatasetMergeError{Path: s.Path, Err: err}
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, &common.DatasetMergeError{Path: s.Path, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("dataset.load.close_error", "path", s.Path, "error", err)
		}
	}()

	sheet := s.Sheet
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		list := f.GetSheetList()
		if len(list) == 0 {
			return New(), nil
		}
		s.logger.Warn("dataset.load.sheet_fallback", "wanted", s.Sheet, "using", list[0])
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &common.DatasetMergeError{Path: s.Path, Err: fmt.Errorf("read sheet %s: %w", sheet, err)}
	}

	d := fromRows(rows)
	s.logger.Info("dataset.load.ok", "path", s.Path, "sheet", sheet, "rows", d.Len(), "columns", len(d.Columns))
	return d, nil
}

// fromRows turns raw sheet rows into a dataset. The first non-empty row is the
// header; blank header cells get pandas-style "Unnamed: N" names.
func fromRows(rows [][]string) *Dataset {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return New()
	}

	header := make([]string, len(rows[start]))
	seen := map[string]int{}
	for i, h := range rows[start] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		header[i] = h
	}

	d := &Dataset{Columns: header}
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		rec := make(entity.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		d.Rows = append(d.Rows, rec)
	}
	return d
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Save writes d to the workbook path, replacing any existing file.
func (s *Store) Save(d *Dataset) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("dataset.save.close_error", "error", err)
		}
	}()

	if s.Sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", s.Sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]interface{}, len(d.Columns))
	widths := make([]int, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(s.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil && len(d.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(d.Columns), 1)
		_ = f.SetCellStyle(s.Sheet, "A1", last, style)
	}

	for i, rec := range d.Rows {
		row := make([]interface{}, len(d.Columns))
		for j, c := range d.Columns {
			v := rec[c]
			row[j] = v
			if n := utf8.RuneCountInString(v); n > widths[j] {
				widths[j] = n
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.Sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(s.Sheet, col, col, clampWidth(w))
	}

	return s.writeAtomic(f)
}

func (s *Store) writeAtomic(f *excelize.File) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.WrapError(err, "create dataset dir")
	}
	tmp, err := os.CreateTemp(dir, ".dataset-*.xlsx")
	if err != nil {
		return common.WrapError(err, "create temp dataset")
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpName) }()

	if err := f.SaveAs(tmpName); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return common.WrapError(err, "replace dataset")
	}
	s.logger.Info("dataset.save.ok", "path", s.Path, "sheet", s.Sheet)
	return nil
}

func clampWidth(chars int) float64 {
	switch {
	case chars < 12:
		return 12
	case chars > 60:
		return 60
	default:
		return float64(chars + 2)
	}
}
