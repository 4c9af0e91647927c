package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "go-covid-pipeline/internal/errors"
)

const sampleConfirmed = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
,Italy,43.0,12.0,0,2,3
Hubei,China,30.9,112.2,444,444,549
Beijing,China,40.1,116.4,14,22,36
,US,37.1,-95.7,1,1,2
`

func TestParseTable(t *testing.T) {
	table, err := ParseTable(strings.NewReader(sampleConfirmed))
	require.NoError(t, err)

	assert.Equal(t, []string{"Province/State", "Country/Region", "Lat", "Long", "1/22/20", "1/23/20", "1/24/20"}, table.Header)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "Italy", table.Rows[0]["Country/Region"])
	assert.Equal(t, "", table.Rows[0]["Province/State"])
	assert.Equal(t, "Hubei", table.Rows[1]["Province/State"])
	assert.Equal(t, "549", table.Rows[1]["1/24/20"])
}

func TestParseTableQuotedField(t *testing.T) {
	input := "Province/State,Country/Region,1/22/20\n,\"Korea, South\",1\n"
	rows, err := ParseRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Korea, South", rows[0]["Country/Region"])
}

func TestParseTableStripsBOM(t *testing.T) {
	input := "\ufeffProvince/State,Country/Region,1/22/20\n,Italy,1\n"
	table, err := ParseTable(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Province/State", table.Header[0])
}

func TestParseTableHeaderOnly(t *testing.T) {
	table, err := ParseTable(strings.NewReader("Province/State,Country/Region,1/22/20\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	assert.Len(t, table.Header, 3)
}

func TestParseTableMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"short row", "Province/State,Country/Region,1/22/20\n,Italy\n"},
		{"long row", "Province/State,Country/Region,1/22/20\n,Italy,1,2\n"},
		{"duplicate column", "Country/Region,1/22/20,1/22/20\nItaly,1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrMalformedInput), err.Error())
		})
	}
}
