package model

import "time"

// RawRow is one parsed CSV data row keyed by column name. Values are kept as text.
type RawRow map[string]string

// DatedValue is a single integer observation for a calendar date.
type DatedValue struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

// Point is a float observation for a calendar date. Value may be NaN or ±Inf
// until it passes the display filter.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// CountrySeries is the per-date sum of every row reported for one country.
type CountrySeries struct {
	Country string       `json:"country"`
	Points  []DatedValue `json:"points"`
}

// DatasetResult is the aggregated form of one source file.
type DatasetResult struct {
	Metric     string          `json:"metric,omitempty"`
	Dates      []time.Time     `json:"dates"`
	PerCountry []CountrySeries `json:"per_country"` // first-seen order
	Total      []DatedValue    `json:"total"`
	RowCount   int             `json:"row_count"`
}

// Country returns the series for an exact country name.
func (d DatasetResult) Country(name string) (CountrySeries, bool) {
	for _, cs := range d.PerCountry {
		if cs.Country == name {
			return cs, true
		}
	}
	return CountrySeries{}, false
}

// DerivedSeries holds the three source series and the four derived ones. All seven
// share one date sequence.
type DerivedSeries struct {
	Confirmed     []DatedValue `json:"confirmed"`
	Deaths        []DatedValue `json:"deaths"`
	Recovered     []DatedValue `json:"recovered"`
	Active        []DatedValue `json:"active"`
	DeathRate     []Point      `json:"death_rate"`
	InfectionRate []Point      `json:"infection_rate"`
	DailyNewCases []DatedValue `json:"daily_new_cases"`
}

// Len returns the number of dates in the series.
func (s DerivedSeries) Len() int {
	return len(s.Confirmed)
}

// Points returns the metric as float points, whatever its storage type.
func (s DerivedSeries) Points(m Metric) []Point {
	switch m {
	case MetricConfirmed:
		return toPoints(s.Confirmed)
	case MetricDeaths:
		return toPoints(s.Deaths)
	case MetricRecovered:
		return toPoints(s.Recovered)
	case MetricActive:
		return toPoints(s.Active)
	case MetricDeathRate:
		return append([]Point(nil), s.DeathRate...)
	case MetricInfectionRate:
		return append([]Point(nil), s.InfectionRate...)
	case MetricDailyNewCases:
		return toPoints(s.DailyNewCases)
	}
	return nil
}

func toPoints(in []DatedValue) []Point {
	out := make([]Point, len(in))
	for i, dv := range in {
		out[i] = Point{Date: dv.Date, Value: float64(dv.Value)}
	}
	return out
}

// CountryDerived pairs a country name with its derived series.
type CountryDerived struct {
	Country string        `json:"country"`
	Series  DerivedSeries `json:"series"`
}

// Metric names one of the seven series of a DerivedSeries.
type Metric string

const (
	MetricConfirmed     Metric = "confirmed"
	MetricDeaths        Metric = "deaths"
	MetricRecovered     Metric = "recovered"
	MetricActive        Metric = "active"
	MetricDeathRate     Metric = "death_rate"
	MetricInfectionRate Metric = "infection_rate"
	MetricDailyNewCases Metric = "daily_new_cases"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{
	MetricConfirmed,
	MetricDeaths,
	MetricRecovered,
	MetricActive,
	MetricDeathRate,
	MetricInfectionRate,
	MetricDailyNewCases,
}
