// Package importer reads word lists from spreadsheets and CSV files.
//
// Columns, in order: english, russian, category, difficulty, phonetic, example.
// Only the first two are mandatory; rows without a category take Config.DefaultCategory.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/terra-clan/vocab-trainer/internal/models"
	"github.com/terra-clan/vocab-trainer/internal/seed"
)

const (
	colEnglish = iota
	colRussian
	colCategory
	colDifficulty
	colPhonetic
	colExample
)

// Config defines the import configuration
type Config struct {
	Path            string // .xlsx or .csv file
	Sheet           string // sheet name for spreadsheets; empty means the first sheet
	StartRow        int    // first data row, 1-based
	DefaultCategory string
}

// DefaultConfig returns the default import configuration
func DefaultConfig() Config {
	return Config{
		StartRow:        2,
		DefaultCategory: "basic",
	}
}

// Result holds the outcome of reading a file
type Result struct {
	Processed int
	Skipped   int
	Errors    []string
	Words     []*models.Word
}

var errEmptyRow = errors.New("empty row")

// ReadFile reads words from a spreadsheet or CSV file, chosen by extension
func ReadFile(cfg Config) (*Result, error) {
	switch strings.ToLower(filepath.Ext(cfg.Path)) {
	case ".csv":
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f, cfg)
	case ".xlsx", ".xlsm":
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
		}
		defer f.Close()
		return ReadSpreadsheet(f, cfg)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(cfg.Path))
	}
}

// ReadSpreadsheet reads words from an xlsx document
func ReadSpreadsheet(r io.Reader, cfg Config) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	return collect(rows, cfg), nil
}

// ReadCSV reads words from CSV data
func ReadCSV(r io.Reader, cfg Config) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return collect(rows, cfg), nil
}

func collect(rows [][]string, cfg Config) *Result {
	result := &Result{Errors: make([]string, 0)}
	now := time.Now().UTC()

	startRow := cfg.StartRow
	if startRow < 1 {
		startRow = 1
	}

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < startRow {
			continue
		}

		word, err := parseRow(row, cfg.DefaultCategory)
		if errors.Is(err, errEmptyRow) {
			result.Skipped++
			continue
		}

		result.Processed++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		prepared, err := seed.Prepare([]*models.Word{word}, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		result.Words = append(result.Words, prepared...)
	}

	return result
}

func parseRow(row []string, defaultCategory string) (*models.Word, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	if cell(colEnglish) == "" && cell(colRussian) == "" {
		return nil, errEmptyRow
	}

	word := &models.Word{
		English:  cell(colEnglish),
		Russian:  cell(colRussian),
		Category: cell(colCategory),
	}
	if word.Category == "" {
		word.Category = defaultCategory
	}

	if d := cell(colDifficulty); d != "" {
		difficulty, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("invalid difficulty %q", d)
		}
		word.Difficulty = difficulty
	}

	if p := cell(colPhonetic); p != "" {
		word.Phonetic = &p
	}
	if e := cell(colExample); e != "" {
		word.Example = &e
	}

	return word, nil
}
