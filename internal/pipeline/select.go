package pipeline

import (
	"strings"

	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/pkg/utils"
)

// SelectionSeparator splits the countries-of-interest setting.
const SelectionSeparator = ";"

// ParseSelection splits a countries-of-interest string. Names are trimmed and
// empty entries dropped; order and duplicates are kept.
func ParseSelection(raw string) model.Selection {
	return model.Selection{Raw: raw, Names: utils.SplitList(raw, SelectionSeparator)}
}

// Select resolves each name against the snapshot countries, ignoring case. A
// name with no match is returned with a nil Series so callers can report it.
func Select(countries []model.CountryDerived, names []string) []model.Selected {
	out := make([]model.Selected, 0, len(names))
	for _, name := range names {
		sel := model.Selected{Name: name}
		for i := range countries {
			if strings.EqualFold(countries[i].Country, name) {
				sel.Country = countries[i].Country
				sel.Series = &countries[i].Series
				break
			}
		}
		out = append(out, sel)
	}
	return out
}

// Matched drops entries that did not resolve to a country.
func Matched(sel []model.Selected) []model.Selected {
	out := make([]model.Selected, 0, len(sel))
	for _, s := range sel {
		if s.Series != nil {
			out = append(out, s)
		}
	}
	return out
}

// Unmatched returns the names that did not resolve, in input order.
func Unmatched(sel []model.Selected) []string {
	var out []string
	for _, s := range sel {
		if s.Series == nil {
			out = append(out, s.Name)
		}
	}
	return out
}

// FindCountry looks up one country by name, ignoring case.
func FindCountry(countries []model.CountryDerived, name string) (model.CountryDerived, bool) {
	for _, c := range countries {
		if strings.EqualFold(c.Country, name) {
			return c, true
		}
	}
	return model.CountryDerived{}, false
}
