package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/oli3535/data-visualization-fianl/internal/models"
	"github.com/oli3535/data-visualization-fianl/pkg/logging"
	"github.com/oli3535/data-visualization-fianl/pkg/metrics"
)

// RequiredColumns is the fixed projection read from the source file, using the
// exact header names of the LAPD export. A file missing any of these cannot be
// loaded.
var RequiredColumns = []string{
	"DATE OCC",
	"TIME OCC",
	"AREA NAME",
	"Crm Cd Desc",
	"Vict Age",
	"Vict Sex",
	"Status Desc",
	"LAT",
	"LON",
	"Weapon Desc",
}

// Loader reads incident datasets from disk with monitoring and a TTL cache.
// CSV sources are parsed through a gota DataFrame; spreadsheet sources through
// excelize. No row-level validation happens here.
type Loader struct {
	cache   *Cache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLoader creates a new dataset loader
func NewLoader(cache *Cache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Loader {
	return &Loader{
		cache:   cache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CacheKey builds the cache key for a dataset path under the fixed projection.
func CacheKey(path string) string {
	return path + "|" + strings.Join(RequiredColumns, ",")
}

// Load returns the raw incident collection for path and the time it was read
// from disk. A cache hit within the validity window returns the prior result
// without touching the file; any load failure is a *DataSourceError.
func (l *Loader) Load(ctx context.Context, path string) ([]models.RawIncident, time.Time, error) {
	key := CacheKey(path)

	if records, loadedAt, ok := l.cache.Get(key); ok {
		l.metrics.DatasetCacheHits.Inc()
		l.logger.Debug(ctx, "[DATASET_CACHE_HIT] Serving cached dataset", logging.Fields{
			"path":      path,
			"rows":      len(records),
			"loaded_at": loadedAt.Format(time.RFC3339),
		})
		return records, loadedAt, nil
	}

	l.metrics.DatasetCacheMisses.Inc()
	timer := l.metrics.NewTimer(l.metrics.LoadDuration)

	var (
		records []models.RawIncident
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		records, err = l.readSpreadsheet(path)
	default:
		records, err = l.readCSV(path)
	}

	if err != nil {
		l.logger.Error(ctx, "[DATASET_LOAD_ERROR] Failed to load dataset", logging.Fields{
			"path": path,
		}, err)
		return nil, time.Time{}, err
	}

	duration := timer.ObserveDuration()
	l.metrics.RowsLoaded.Set(float64(len(records)))
	loadedAt := l.cache.Put(key, records)

	l.logger.Info(ctx, "[DATASET_LOADED] Dataset loaded from disk", logging.Fields{
		"path":        path,
		"rows":        len(records),
		"duration_ms": duration.Milliseconds(),
	})

	return records, loadedAt, nil
}

// readCSV loads a delimited source file through a gota DataFrame and projects
// it down to the required columns.
func (l *Loader) readCSV(path string) ([]models.RawIncident, error) {
	f, err := os.Open(path)
	if err != nil {
		l.metrics.RecordLoadError("open_error")
		return nil, &DataSourceError{Path: path, Reason: "cannot open file", Err: err}
	}
	defer f.Close()

	// Every column stays a string series; coercion is the cleaner's job.
	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		l.metrics.RecordLoadError("parse_error")
		return nil, &DataSourceError{Path: path, Reason: "cannot parse CSV", Err: df.Error()}
	}

	if missing := missingColumns(df.Names()); len(missing) > 0 {
		l.metrics.RecordLoadError("missing_column")
		return nil, &DataSourceError{
			Path:   path,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	projected := df.Select(RequiredColumns)
	if projected.Error() != nil {
		l.metrics.RecordLoadError("projection_error")
		return nil, &DataSourceError{Path: path, Reason: "cannot project columns", Err: projected.Error()}
	}

	columns := make([][]string, len(RequiredColumns))
	for i, name := range RequiredColumns {
		columns[i] = projected.Col(name).Records()
	}

	records := make([]models.RawIncident, projected.Nrow())
	for row := range records {
		records[row] = rawIncidentFromCells(func(col int) string {
			return columns[col][row]
		})
	}

	return records, nil
}

// readSpreadsheet loads an Excel workbook, taking the first sheet and its
// first row as the header, under the same projection contract as CSV.
func (l *Loader) readSpreadsheet(path string) ([]models.RawIncident, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		l.metrics.RecordLoadError("open_error")
		return nil, &DataSourceError{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		l.metrics.RecordLoadError("parse_error")
		return nil, &DataSourceError{Path: path, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		l.metrics.RecordLoadError("parse_error")
		return nil, &DataSourceError{Path: path, Reason: "cannot read sheet", Err: err}
	}

	if len(rows) == 0 {
		l.metrics.RecordLoadError("missing_column")
		return nil, &DataSourceError{Path: path, Reason: "sheet has no header row"}
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	indices := make([]int, len(RequiredColumns))
	var missing []string
	for i, name := range RequiredColumns {
		idx, ok := colIndex[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		indices[i] = idx
	}
	if len(missing) > 0 {
		l.metrics.RecordLoadError("missing_column")
		return nil, &DataSourceError{
			Path:   path,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	records := make([]models.RawIncident, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rawIncidentFromCells(func(col int) string {
			// Trailing empty cells are omitted by excelize
			if indices[col] >= len(row) {
				return ""
			}
			return row[indices[col]]
		}))
	}

	return records, nil
}

// rawIncidentFromCells assembles a RawIncident from a cell accessor indexed in
// RequiredColumns order.
func rawIncidentFromCells(cell func(col int) string) models.RawIncident {
	return models.RawIncident{
		DateOccurred:      cell(0),
		TimeOccurred:      cell(1),
		AreaName:          cell(2),
		CrimeDescription:  cell(3),
		VictimAge:         cell(4),
		VictimSex:         cell(5),
		CaseStatus:        cell(6),
		Latitude:          cell(7),
		Longitude:         cell(8),
		WeaponDescription: cell(9),
	}
}

func missingColumns(names []string) []string {
	present := make(map[string]struct{}, len(names))
	for _, n := range names {
		present[n] = struct{}{}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := present[required]; !ok {
			missing = append(missing, required)
		}
	}
	return missing
}
