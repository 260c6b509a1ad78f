// File path: internal/results/reader.go
package results

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLFileName is the EnergyPlus SQLite output written in the run directory.
const SQLFileName = "eplusout.sql"

// Output variables requested for comfort studies.
const (
	OperativeTemperature = "Zone Operative Temperature"
	RelativeHumidity     = "Zone Air Relative Humidity"
	CO2Concentration     = "Zone Air CO2 Concentration"
)

// ErrNoResults is returned when a run directory holds no eplusout.sql.
var ErrNoResults = errors.New("simulation results not found")

// Series is the hourly (or other frequency) trace of one variable for one zone.
type Series struct {
	Zone      string    `json:"zone"`
	Variable  string    `json:"variable"`
	Units     string    `json:"units"`
	Frequency string    `json:"frequency"`
	Values    []float64 `json:"values"`
}

// Mean averages the series; an empty series yields 0.
func (s Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range s.Values {
		total += v
	}
	return total / float64(len(s.Values))
}

// Comfort groups the three comfort outputs by variable.
type Comfort struct {
	OperativeTemperature []Series `json:"operative_temperature"`
	RelativeHumidity     []Series `json:"relative_humidity"`
	CO2                  []Series `json:"co2"`
}

// Reader queries an eplusout.sql database opened read-only.
type Reader struct {
	db   *sqlx.DB
	path string
}

// Open opens the results database at path.
func Open(path string) (*Reader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve results path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoResults, abs, err)
	}
	db, err := sqlx.Open("sqlite", fileDSN(abs, "mode=ro"))
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping results: %w", err)
	}
	return &Reader{db: db, path: abs}, nil
}

// OpenDir opens eplusout.sql inside a simulation run directory.
func OpenDir(dir string) (*Reader, error) {
	return Open(filepath.Join(dir, SQLFileName))
}

func (r *Reader) Path() string { return r.path }

func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

type dictionaryRow struct {
	Index     int64  `db:"ReportDataDictionaryIndex"`
	KeyValue  string `db:"KeyValue"`
	Name      string `db:"Name"`
	Units     string `db:"Units"`
	Frequency string `db:"ReportingFrequency"`
}

// Variables lists the distinct output variable names in the database.
func (r *Reader) Variables(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT Name FROM ReportDataDictionary ORDER BY Name`); err != nil {
		return nil, fmt.Errorf("select variables: %w", err)
	}
	return names, nil
}

// Series returns one series per zone for the named output variable, in
// dictionary order. Warmup timesteps are excluded. A variable that was not
// reported yields an empty slice.
func (r *Reader) Series(ctx context.Context, variable string) ([]Series, error) {
	dict := []dictionaryRow{}
	if err := r.db.SelectContext(ctx, &dict, `SELECT ReportDataDictionaryIndex,
                COALESCE(KeyValue, '') AS KeyValue, Name,
                COALESCE(Units, '') AS Units,
                COALESCE(ReportingFrequency, '') AS ReportingFrequency
                FROM ReportDataDictionary WHERE Name = ? ORDER BY ReportDataDictionaryIndex`, variable); err != nil {
		return nil, fmt.Errorf("select dictionary for %s: %w", variable, err)
	}
	out := make([]Series, 0, len(dict))
	for _, entry := range dict {
		values := []float64{}
		if err := r.db.SelectContext(ctx, &values, `SELECT d.Value FROM ReportData d
                        LEFT JOIN Time t ON t.TimeIndex = d.TimeIndex
                        WHERE d.ReportDataDictionaryIndex = ? AND COALESCE(t.WarmupFlag, 0) = 0
                        ORDER BY d.TimeIndex`, entry.Index); err != nil {
			return nil, fmt.Errorf("select values for %s/%s: %w", variable, entry.KeyValue, err)
		}
		out = append(out, Series{
			Zone:      entry.KeyValue,
			Variable:  entry.Name,
			Units:     entry.Units,
			Frequency: entry.Frequency,
			Values:    values,
		})
	}
	return out, nil
}

// Comfort reads the operative temperature, relative humidity and CO2 series.
func (r *Reader) Comfort(ctx context.Context) (Comfort, error) {
	var c Comfort
	var err error
	if c.OperativeTemperature, err = r.Series(ctx, OperativeTemperature); err != nil {
		return Comfort{}, err
	}
	if c.RelativeHumidity, err = r.Series(ctx, RelativeHumidity); err != nil {
		return Comfort{}, err
	}
	if c.CO2, err = r.Series(ctx, CO2Concentration); err != nil {
		return Comfort{}, err
	}
	return c, nil
}

// fileDSN builds a file: URI for abs, escaping characters such as ? # and %
// that would otherwise end the path early.
func fileDSN(abs, query string) string {
	path := filepath.ToSlash(abs)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return (&url.URL{Scheme: "file", Path: path, RawQuery: query}).String()
}
