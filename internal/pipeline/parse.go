package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

// Table is a parsed CSV file: header order plus one RawRow per data row.
type Table struct {
	Header []string
	Rows   []model.RawRow
}

// ParseTable reads delimited text with a header row. Rows whose width differs
// from the header abort the whole file with a MalformedInput error; nothing is
// skipped.
func ParseTable(r io.Reader) (Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = 0 // first record (the header) fixes the width

	header, err := csvReader.Read()
	if err == io.EOF {
		return Table{}, apperrors.NewMalformedError("missing header row", nil)
	}
	if err != nil {
		return Table{}, apperrors.NewMalformedError("read header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return Table{}, apperrors.NewMalformedError(fmt.Sprintf("duplicate column %q", h), nil).
				WithContext("column", h)
		}
		seen[h] = true
	}

	table := Table{Header: header}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			if errors.Is(err, csv.ErrFieldCount) {
				return Table{}, apperrors.NewMalformedError(
					fmt.Sprintf("line %d has %d columns, header has %d", line, len(record), len(header)), err).
					WithContext("line", line)
			}
			return Table{}, apperrors.NewMalformedError(fmt.Sprintf("read line %d", line), err).
				WithContext("line", line)
		}

		row := make(model.RawRow, len(header))
		for i, h := range header {
			row[h] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ParseRows is ParseTable without the header order.
func ParseRows(r io.Reader) ([]model.RawRow, error) {
	table, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	return table.Rows, nil
}
