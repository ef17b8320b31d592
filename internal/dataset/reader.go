package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "marketcli/internal/errors"
)

// ReadCSV reads a CSV file into a Table. The first row is the header;
// column names are kept verbatim apart from surrounding whitespace and a
// leading UTF-8 BOM.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewParsingError(fmt.Sprintf("CSV file not found: %s", path), err)
		}
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open CSV file: %s", path), err)
	}
	defer f.Close()

	return ReadFrom(f)
}

// ReadFrom reads CSV data from a reader into a Table
func ReadFrom(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0 // enforce rectangular data

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewAppError(apperrors.ErrTypeEmptyDataset, "CSV file is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CSV header", err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[i] = name
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read CSV record", err)
		}
		row := make([]string, len(record))
		copy(row, record)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeEmptyDataset, "CSV contains no data rows", nil)
	}

	return New(columns, rows)
}
