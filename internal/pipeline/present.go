package pipeline

import (
	"math"

	"go-covid-pipeline/internal/model"
)

// Display colors.
const (
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorOrange = "orange"
	ColorBlue   = "blue"
)

// Units and chart line type.
const (
	UnitCount   = "count"
	UnitPercent = "percent"
	LineSpline  = "spline"
)

// seriesStyle is the fixed label and color of one metric.
type seriesStyle struct {
	name  string
	color string
	unit  string
}

var styles = map[model.Metric]seriesStyle{
	model.MetricConfirmed:     {"Confirmed", ColorBlue, UnitCount},
	model.MetricDeaths:        {"Deaths", ColorRed, UnitCount},
	model.MetricRecovered:     {"Recovered", ColorGreen, UnitCount},
	model.MetricActive:        {"Infected", ColorOrange, UnitCount},
	model.MetricDeathRate:     {"Death rate", ColorRed, UnitPercent},
	model.MetricInfectionRate: {"Infection growth rate", ColorOrange, UnitPercent},
	model.MetricDailyNewCases: {"Daily new cases", ColorOrange, UnitCount},
}

// Displayable reports whether a value may be plotted: finite and strictly
// positive. NaN, ±Inf, zero and negatives are dropped.
func Displayable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// FilterDisplayable keeps the displayable points in order.
func FilterDisplayable(points []model.Point) []model.Point {
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if Displayable(p.Value) {
			out = append(out, p)
		}
	}
	return out
}

// ChartSeriesFor builds the labelled, filtered series of one metric.
func ChartSeriesFor(s model.DerivedSeries, m model.Metric) model.ChartSeries {
	st := styles[m]
	return model.ChartSeries{
		Name:   st.name,
		Metric: m,
		Color:  st.color,
		Type:   LineSpline,
		Unit:   st.unit,
		Points: FilterDisplayable(s.Points(m)),
	}
}

// BuildEntityView renders Total or one country into the seven series and the
// four dashboard charts: Linear, Logarithmic, Rates and Daily new cases.
func BuildEntityView(title string, s model.DerivedSeries) model.EntityView {
	series := make(map[model.Metric]model.ChartSeries, len(model.Metrics))
	view := model.EntityView{Title: title, Series: make([]model.ChartSeries, 0, len(model.Metrics))}
	for _, m := range model.Metrics {
		cs := ChartSeriesFor(s, m)
		series[m] = cs
		view.Series = append(view.Series, cs)
	}

	linear := []model.ChartSeries{
		series[model.MetricDeaths],
		series[model.MetricRecovered],
		series[model.MetricActive],
	}
	zero := 0.0
	view.Charts = []model.Chart{
		{Title: "Linear", Series: linear},
		{Title: "Logarithmic", Logarithmic: true, Series: linear},
		{
			Title:       "Rates",
			ValueFormat: "#%",
			Minimum:     &zero,
			Series:      []model.ChartSeries{series[model.MetricDeathRate], series[model.MetricInfectionRate]},
		},
		{Title: "Daily new cases", Series: []model.ChartSeries{series[model.MetricDailyNewCases]}},
	}
	return view
}

// TotalTitle is the display title of the all-rows aggregate.
const TotalTitle = "Total"

// BuildDashboardView renders Total and every matched selection entry. Names
// that did not match are listed in Unmatched and otherwise skipped.
func BuildDashboardView(snap *model.Snapshot, selection model.Selection) model.DashboardView {
	selected := Select(snap.Countries, selection.Names)
	view := model.DashboardView{
		RunID:     snap.RunID,
		FetchedAt: snap.FetchedAt,
		Selection: selection,
		Total:     BuildEntityView(TotalTitle, snap.Total),
		Countries: []model.EntityView{},
		Unmatched: Unmatched(selected),
	}
	for _, sel := range Matched(selected) {
		view.Countries = append(view.Countries, BuildEntityView(sel.Country, *sel.Series))
	}
	return view
}
