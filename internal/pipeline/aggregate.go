package pipeline

import (
	"fmt"
	"time"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/pkg/utils"
)

// Column names of the source files.
const (
	ColumnCountry  = "Country/Region"
	ColumnProvince = "Province/State"
)

// dateColumn is a date header and its parsed calendar date.
type dateColumn struct {
	header string
	date   time.Time
}

// Aggregate groups rows by Country/Region and sums every date column across the
// provinces of each country. It also sums all rows into the total series.
//
// Countries keep first-seen order and dates keep header order, so the result is
// identical for identical input.
func Aggregate(table Table) (model.DatasetResult, error) {
	columns, err := dateColumns(table.Header)
	if err != nil {
		return model.DatasetResult{}, err
	}
	if !hasColumn(table.Header, ColumnCountry) {
		return model.DatasetResult{}, apperrors.NewMalformedError(
			fmt.Sprintf("missing required column %q", ColumnCountry), nil)
	}

	dates := make([]time.Time, len(columns))
	for i, c := range columns {
		dates[i] = c.date
	}

	total := make([]int64, len(columns))
	var order []string
	sums := make(map[string][]int64)

	for i, row := range table.Rows {
		country := row[ColumnCountry]
		countrySums, ok := sums[country]
		if !ok {
			countrySums = make([]int64, len(columns))
			sums[country] = countrySums
			order = append(order, country)
		}

		for j, c := range columns {
			n, err := utils.ParseCount(row[c.header])
			if err != nil {
				return model.DatasetResult{}, apperrors.NewParsingError(
					fmt.Sprintf("row %d (%s), column %s: %q is not a count", i+1, country, c.header, row[c.header]), err).
					WithContext("row", i+1).
					WithContext("column", c.header)
			}
			countrySums[j] += n
			total[j] += n
		}
	}

	result := model.DatasetResult{
		Dates:      dates,
		PerCountry: make([]model.CountrySeries, 0, len(order)),
		Total:      toDatedValues(dates, total),
		RowCount:   len(table.Rows),
	}
	for _, country := range order {
		result.PerCountry = append(result.PerCountry, model.CountrySeries{
			Country: country,
			Points:  toDatedValues(dates, sums[country]),
		})
	}
	return result, nil
}

// dateColumns picks the date headers in header order. A header shaped like a
// date that is not a real calendar day makes the file malformed.
func dateColumns(header []string) ([]dateColumn, error) {
	var columns []dateColumn
	for _, h := range header {
		if !utils.IsDateColumn(h) {
			continue
		}
		d, err := utils.ParseDate(h)
		if err != nil {
			return nil, apperrors.NewMalformedError(fmt.Sprintf("date column %q", h), err).
				WithContext("column", h)
		}
		columns = append(columns, dateColumn{header: h, date: d})
	}
	return columns, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func toDatedValues(dates []time.Time, values []int64) []model.DatedValue {
	out := make([]model.DatedValue, len(dates))
	for i, d := range dates {
		out[i] = model.DatedValue{Date: d, Value: values[i]}
	}
	return out
}
