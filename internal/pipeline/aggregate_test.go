package pipeline

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC)
}

func values(series []model.DatedValue) []int64 {
	out := make([]int64, len(series))
	for i, v := range series {
		out[i] = v.Value
	}
	return out
}

func aggregateString(t *testing.T, input string) (model.DatasetResult, error) {
	t.Helper()
	table, err := ParseTable(strings.NewReader(input))
	require.NoError(t, err)
	return Aggregate(table)
}

func TestAggregate(t *testing.T) {
	res, err := aggregateString(t, sampleConfirmed)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(1, 22), day(1, 23), day(1, 24)}, res.Dates)
	assert.Equal(t, 4, res.RowCount)

	require.Len(t, res.PerCountry, 3)
	assert.Equal(t, "Italy", res.PerCountry[0].Country)
	assert.Equal(t, "China", res.PerCountry[1].Country)
	assert.Equal(t, "US", res.PerCountry[2].Country)

	china, ok := res.Country("China")
	require.True(t, ok)
	assert.Equal(t, []int64{458, 466, 585}, values(china.Points))
	assert.Equal(t, day(1, 24), china.Points[2].Date)

	assert.Equal(t, []int64{459, 469, 590}, values(res.Total))
}

func TestAggregateTotalEqualsSumOfCountries(t *testing.T) {
	res, err := aggregateString(t, sampleConfirmed)
	require.NoError(t, err)

	for i := range res.Dates {
		var sum int64
		for _, cs := range res.PerCountry {
			sum += cs.Points[i].Value
		}
		assert.Equal(t, res.Total[i].Value, sum, "date index %d", i)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	first, err := aggregateString(t, sampleConfirmed)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := aggregateString(t, sampleConfirmed)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAggregateKeepsHeaderDateOrder(t *testing.T) {
	input := "Country/Region,1/24/20,1/22/20\nItaly,5,1\n"
	res, err := aggregateString(t, input)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(1, 24), day(1, 22)}, res.Dates)
	assert.Equal(t, []int64{5, 1}, values(res.Total))
}

func TestAggregateNoDateColumns(t *testing.T) {
	res, err := aggregateString(t, "Province/State,Country/Region,Lat\n,Italy,43\n")
	require.NoError(t, err)
	assert.Empty(t, res.Dates)
	require.Len(t, res.PerCountry, 1)
	assert.Empty(t, res.PerCountry[0].Points)
}

func TestAggregateSingleRowRoundTrip(t *testing.T) {
	res, err := aggregateString(t, "Country/Region,3/1/20\nUS,42\n")
	require.NoError(t, err)

	want := []model.DatedValue{{Date: day(3, 1), Value: 42}}
	require.Len(t, res.PerCountry, 1)
	assert.Equal(t, "US", res.PerCountry[0].Country)
	assert.Equal(t, want, res.PerCountry[0].Points)
	assert.Equal(t, want, res.Total)
}

func TestAggregateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"non numeric cell", "Country/Region,1/22/20\nItaly,abc\n", apperrors.ErrParseFailure},
		{"empty cell", "Country/Region,1/22/20\nItaly,\n", apperrors.ErrParseFailure},
		{"missing country column", "Province/State,1/22/20\nLombardy,1\n", apperrors.ErrMalformedInput},
		{"impossible date", "Country/Region,2/30/20\nItaly,1\n", apperrors.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := aggregateString(t, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
