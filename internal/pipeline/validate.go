package pipeline

import (
	"fmt"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/pkg/utils"
)

// checkAligned verifies that the three series can be combined index by index:
// same length and the same date at every index.
func checkAligned(confirmed, deaths, recovered []model.DatedValue) error {
	if len(confirmed) != len(deaths) || len(confirmed) != len(recovered) {
		return apperrors.NewMisalignedError(fmt.Sprintf(
			"series lengths differ: confirmed=%d deaths=%d recovered=%d",
			len(confirmed), len(deaths), len(recovered)))
	}
	for i := range confirmed {
		d := confirmed[i].Date
		if !deaths[i].Date.Equal(d) || !recovered[i].Date.Equal(d) {
			return apperrors.NewMisalignedError(fmt.Sprintf(
				"dates differ at index %d: confirmed=%s deaths=%s recovered=%s",
				i, utils.FormatDate(d), utils.FormatDate(deaths[i].Date), utils.FormatDate(recovered[i].Date))).
				WithContext("index", i)
		}
	}
	return nil
}

// checkSameCountries verifies that deaths and recovered report exactly the
// countries confirmed reports. Order may differ; lookups are by name.
func checkSameCountries(confirmed, deaths, recovered model.DatasetResult) error {
	for _, other := range []model.DatasetResult{deaths, recovered} {
		if len(other.PerCountry) != len(confirmed.PerCountry) {
			return apperrors.NewMisalignedError(fmt.Sprintf(
				"%s reports %d countries, %s reports %d",
				metricName(confirmed, model.SourceConfirmed), len(confirmed.PerCountry),
				metricName(other, "dataset"), len(other.PerCountry)))
		}
	}
	for _, cs := range confirmed.PerCountry {
		for _, other := range []model.DatasetResult{deaths, recovered} {
			if _, ok := other.Country(cs.Country); !ok {
				return apperrors.NewMisalignedError(fmt.Sprintf(
					"country %q missing from %s", cs.Country, metricName(other, "dataset"))).
					WithContext("country", cs.Country)
			}
		}
	}
	return nil
}

func metricName(d model.DatasetResult, fallback string) string {
	if d.Metric != "" {
		return d.Metric
	}
	return fallback
}
