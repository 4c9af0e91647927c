package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ExportHeader is the column order of every export format.
var ExportHeader = []string{
	"entity", "date", "confirmed", "deaths", "recovered", "active",
	"death_rate", "infection_rate", "daily_new_cases",
}

// ExportRow is one entity on one date. Rates are nil when undefined.
type ExportRow struct {
	Entity        string    `json:"entity"`
	Date          time.Time `json:"date"`
	Confirmed     int64     `json:"confirmed"`
	Deaths        int64     `json:"deaths"`
	Recovered     int64     `json:"recovered"`
	Active        int64     `json:"active"`
	DeathRate     *float64  `json:"death_rate"`
	InfectionRate *float64  `json:"infection_rate"`
	DailyNewCases int64     `json:"daily_new_cases"`
}

// ExportResult describes one finished export.
type ExportResult struct {
	Type        string    `json:"type"` // csv, json, xlsx, database
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	ExportedAt  time.Time `json:"exported_at"`
}

// PointSaver persists export rows. Implemented by the store.
type PointSaver interface {
	SavePoints(ctx context.Context, runID string, rows []ExportRow) error
}

// ValidFormat reports whether format is a supported export format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return true
	}
	return false
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// BuildExportRows flattens Total and the matched countries of a selection.
// Entity names are unique per run: a country whose name collides with
// TotalTitle is left out.
func BuildExportRows(snap *model.Snapshot, names []string) []ExportRow {
	rows := entityRows(TotalTitle, snap.Total)
	for _, sel := range Matched(Select(snap.Countries, names)) {
		if strings.EqualFold(sel.Country, TotalTitle) {
			continue
		}
		rows = append(rows, entityRows(sel.Country, *sel.Series)...)
	}
	return rows
}

func entityRows(entity string, s model.DerivedSeries) []ExportRow {
	rows := make([]ExportRow, s.Len())
	for i := range rows {
		rows[i] = ExportRow{
			Entity:        entity,
			Date:          s.Confirmed[i].Date,
			Confirmed:     s.Confirmed[i].Value,
			Deaths:        s.Deaths[i].Value,
			Recovered:     s.Recovered[i].Value,
			Active:        s.Active[i].Value,
			DeathRate:     finite(s.DeathRate[i].Value),
			InfectionRate: finite(s.InfectionRate[i].Value),
			DailyNewCases: s.DailyNewCases[i].Value,
		}
	}
	return rows
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r ExportRow) record() []string {
	return []string{
		r.Entity,
		r.Date.Format("2006-01-02"),
		strconv.FormatInt(r.Confirmed, 10),
		strconv.FormatInt(r.Deaths, 10),
		strconv.FormatInt(r.Recovered, 10),
		strconv.FormatInt(r.Active, 10),
		formatRate(r.DeathRate),
		formatRate(r.InfectionRate),
		strconv.FormatInt(r.DailyNewCases, 10),
	}
}

func formatRate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ExportCSV writes the rows as CSV with ExportHeader.
func ExportCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		if err := writer.Write(r.record()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportJSON writes the rows with run metadata.
func ExportJSON(w io.Writer, runID string, rows []ExportRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":       runID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
		},
		"data": rows,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportSheet is the worksheet name of XLSX exports.
const ExportSheet = "Series"

// ExportXLSX writes the rows as a single-sheet workbook.
func ExportXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(ExportSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.Entity, r.Date.Format("2006-01-02"),
			r.Confirmed, r.Deaths, r.Recovered, r.Active,
			rateCell(r.DeathRate), rateCell(r.InfectionRate),
			r.DailyNewCases,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

func rateCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Write encodes rows in the given format.
func Write(w io.Writer, format, runID string, rows []ExportRow) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportCSV(w, rows)
	case FormatJSON:
		return ExportJSON(w, runID, rows)
	case FormatXLSX:
		return ExportXLSX(w, rows)
	}
	return apperrors.NewValidationError(fmt.Sprintf("unsupported export format %q", format))
}

// ExportToFile writes rows to path, creating its directory.
func ExportToFile(path, format, runID string, rows []ExportRow) (ExportResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := Write(file, format, runID, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{
		Type:        strings.ToLower(format),
		Path:        path,
		RecordCount: len(rows),
		ExportedAt:  time.Now().UTC(),
	}, nil
}

// SaveToStore persists rows through saver under runID.
func SaveToStore(ctx context.Context, saver PointSaver, runID string, rows []ExportRow, logger *slog.Logger) (ExportResult, error) {
	if err := saver.SavePoints(ctx, runID, rows); err != nil {
		return ExportResult{}, apperrors.NewStorageError("save points", err).WithContext("run_id", runID)
	}
	if logger != nil {
		logger.InfoContext(ctx, "exported points to database",
			slog.String("run_id", runID), slog.Int("rows", len(rows)))
	}
	return ExportResult{
		Type:        "database",
		Path:        "derived_points",
		RecordCount: len(rows),
		ExportedAt:  time.Now().UTC(),
	}, nil
}
