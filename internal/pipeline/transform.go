package pipeline

import (
	"go-covid-pipeline/internal/model"
)

// Derive computes active cases, death rate, infection growth rate and daily new
// cases from three aligned series. It fails with a MisalignedSeries error before
// touching any index when the inputs differ in length or dates.
//
// Rates are plain float division: a zero denominator yields NaN or ±Inf, which is
// a valid outcome removed later by the display filter.
func Derive(confirmed, deaths, recovered []model.DatedValue) (model.DerivedSeries, error) {
	if err := checkAligned(confirmed, deaths, recovered); err != nil {
		return model.DerivedSeries{}, err
	}

	n := len(confirmed)
	out := model.DerivedSeries{
		Confirmed:     append([]model.DatedValue(nil), confirmed...),
		Deaths:        append([]model.DatedValue(nil), deaths...),
		Recovered:     append([]model.DatedValue(nil), recovered...),
		Active:        make([]model.DatedValue, n),
		DeathRate:     make([]model.Point, n),
		InfectionRate: make([]model.Point, n),
		DailyNewCases: make([]model.DatedValue, n),
	}

	for i := 0; i < n; i++ {
		date := confirmed[i].Date
		c, d, r := confirmed[i].Value, deaths[i].Value, recovered[i].Value

		active := c - d - r
		out.Active[i] = model.DatedValue{Date: date, Value: active}
		out.DeathRate[i] = model.Point{Date: date, Value: ratio(d, r+d)}

		if i == 0 {
			out.InfectionRate[i] = model.Point{Date: date, Value: 0}
			out.DailyNewCases[i] = model.DatedValue{Date: date, Value: 0}
			continue
		}
		out.InfectionRate[i] = model.Point{Date: date, Value: ratio(active, out.Active[i-1].Value)}
		out.DailyNewCases[i] = model.DatedValue{Date: date, Value: c - confirmed[i-1].Value}
	}
	return out, nil
}

// ratio divides as floats so 0/0 is NaN and x/0 is ±Inf rather than a panic.
func ratio(num, den int64) float64 {
	return float64(num) / float64(den)
}

// DeriveAll derives the total and every country. Countries are matched across
// the three datasets by name and returned in the confirmed file's order.
func DeriveAll(confirmed, deaths, recovered model.DatasetResult) (model.DerivedSeries, []model.CountryDerived, error) {
	total, err := Derive(confirmed.Total, deaths.Total, recovered.Total)
	if err != nil {
		return model.DerivedSeries{}, nil, err
	}
	if err := checkSameCountries(confirmed, deaths, recovered); err != nil {
		return model.DerivedSeries{}, nil, err
	}

	countries := make([]model.CountryDerived, 0, len(confirmed.PerCountry))
	for _, c := range confirmed.PerCountry {
		d, _ := deaths.Country(c.Country)
		r, _ := recovered.Country(c.Country)
		series, err := Derive(c.Points, d.Points, r.Points)
		if err != nil {
			return model.DerivedSeries{}, nil, err
		}
		countries = append(countries, model.CountryDerived{Country: c.Country, Series: series})
	}
	return total, countries, nil
}
