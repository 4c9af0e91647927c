package model

import "time"

// Snapshot is the immutable result of one pipeline run. A new run replaces it
// wholesale.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	FetchedAt time.Time        `json:"fetched_at"`
	Dates     []time.Time      `json:"dates"`
	Total     DerivedSeries    `json:"total"`
	Countries []CountryDerived `json:"countries"`
}

// CountryNames returns the countries in first-seen order.
func (s *Snapshot) CountryNames() []string {
	names := make([]string, len(s.Countries))
	for i, c := range s.Countries {
		names[i] = c.Country
	}
	return names
}

// ChartSeries is one named, colored line handed to a renderer. Points are already
// filtered to finite, strictly positive values.
type ChartSeries struct {
	Name   string  `json:"name"`
	Metric Metric  `json:"metric"`
	Color  string  `json:"color"`
	Type   string  `json:"type"`
	Unit   string  `json:"unit"` // count or percent
	Points []Point `json:"points"`
}

// Chart groups series the way the dashboard lays them out.
type Chart struct {
	Title       string        `json:"title"`
	Logarithmic bool          `json:"logarithmic,omitempty"`
	ValueFormat string        `json:"value_format,omitempty"`
	Minimum     *float64      `json:"minimum,omitempty"`
	Series      []ChartSeries `json:"series"`
}

// EntityView is everything a renderer needs for Total or one country.
type EntityView struct {
	Title  string        `json:"title"`
	Series []ChartSeries `json:"series"`
	Charts []Chart       `json:"charts"`
}

// DashboardView is Total plus the selected countries.
type DashboardView struct {
	RunID     string       `json:"run_id"`
	FetchedAt time.Time    `json:"fetched_at"`
	Selection Selection    `json:"selection"`
	Total     EntityView   `json:"total"`
	Countries []EntityView `json:"countries"`
	Unmatched []string     `json:"unmatched,omitempty"`
}
