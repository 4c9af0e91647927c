package model

// Source metric names. Each names one of the three input files.
const (
	SourceConfirmed = "confirmed"
	SourceDeaths    = "deaths"
	SourceRecovered = "recovered"
)

// Source is one input file, fetched over HTTP(S) or read from disk.
type Source struct {
	Metric   string `json:"metric" yaml:"metric"`
	Location string `json:"location" yaml:"location"` // URL or local path
}

// SourceSet is the three files one refresh consumes.
type SourceSet struct {
	Confirmed Source `json:"confirmed" yaml:"confirmed"`
	Deaths    Source `json:"deaths" yaml:"deaths"`
	Recovered Source `json:"recovered" yaml:"recovered"`
}

// All returns the sources in confirmed, deaths, recovered order.
func (s SourceSet) All() []Source {
	return []Source{s.Confirmed, s.Deaths, s.Recovered}
}

// NewSourceSet builds a SourceSet from three locations.
func NewSourceSet(confirmed, deaths, recovered string) SourceSet {
	return SourceSet{
		Confirmed: Source{Metric: SourceConfirmed, Location: confirmed},
		Deaths:    Source{Metric: SourceDeaths, Location: deaths},
		Recovered: Source{Metric: SourceRecovered, Location: recovered},
	}
}

// Selection is the parsed countries-of-interest setting.
type Selection struct {
	Raw   string   `json:"raw"`
	Names []string `json:"names"`
}

// Selected is one configured name and, when it matched, that country's series.
type Selected struct {
	Name    string         `json:"name"`
	Country string         `json:"country,omitempty"`
	Series  *DerivedSeries `json:"series,omitempty"`
}
