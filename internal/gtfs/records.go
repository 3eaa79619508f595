package gtfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
)

var ErrMissingColumn = errors.New("missing required column")

// RecordError locates a malformed row in a record file. Line counts rows
// from 1, header included.
type RecordError struct {
	File string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Accepted header names per column. GTFS style names are accepted so a
// stops.txt can be used directly as a stops file.
var (
	stopIDColumns   = []string{"id", "stop_id"}
	stopLatColumns  = []string{"lat", "stop_lat"}
	stopLonColumns  = []string{"lon", "stop_lon"}
	connFromColumns = []string{"from", "from_stop_id"}
	connToColumns   = []string{"to", "to_stop_id"}
	connLenColumns  = []string{"length"}
)

// LoadRecords reads a network from a stops CSV file (id,lat,lon) and a
// connections CSV file (from,to[,length]). Both files need a header row.
//
// A connection with an empty or missing length gets the great-circle
// distance between its stops on a sphere of the given radius. References to
// unknown stops are left for the graph builder to reject.
func LoadRecords(stopsPath, connectionsPath string, radius float64) (*models.NetworkData, error) {
	stops, err := loadStops(stopsPath)
	if err != nil {
		return nil, err
	}
	connections, err := loadConnections(connectionsPath, stops, radius)
	if err != nil {
		return nil, err
	}
	return models.NewNetworkData(stops, connections), nil
}

func loadStops(path string) ([]models.Stop, error) {
	var stops []models.Stop
	err := readCSV(path, func(header map[string]int) error {
		return requireColumns(header, stopIDColumns, stopLatColumns, stopLonColumns)
	}, func(header map[string]int, row []string) error {
		id := field(header, row, stopIDColumns)
		lat, err := strconv.ParseFloat(field(header, row, stopLatColumns), 64)
		if err != nil {
			return fmt.Errorf("stop %q: invalid latitude: %w", id, err)
		}
		lon, err := strconv.ParseFloat(field(header, row, stopLonColumns), 64)
		if err != nil {
			return fmt.Errorf("stop %q: invalid longitude: %w", id, err)
		}
		stops = append(stops, models.Stop{ID: id, Lat: lat, Lon: lon})
		return nil
	})
	return stops, err
}

func loadConnections(path string, stops []models.Stop, radius float64) ([]models.Connection, error) {
	byID := make(map[string]models.Stop, len(stops))
	for _, s := range stops {
		byID[s.ID] = s
	}

	var connections []models.Connection
	err := readCSV(path, func(header map[string]int) error {
		return requireColumns(header, connFromColumns, connToColumns)
	}, func(header map[string]int, row []string) error {
		conn := models.Connection{
			From: field(header, row, connFromColumns),
			To:   field(header, row, connToColumns),
		}
		if raw := field(header, row, connLenColumns); raw != "" {
			length, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("connection %s-%s: invalid length: %w", conn.From, conn.To, err)
			}
			conn.Length = length
		} else {
			from, okFrom := byID[conn.From]
			to, okTo := byID[conn.To]
			if okFrom && okTo {
				conn.Length = geo.GeodesicDistance(from.Lat, from.Lon, to.Lat, to.Lon, radius)
			}
		}
		connections = append(connections, conn)
		return nil
	})
	return connections, err
}

// readCSV streams a headered CSV file row by row.
func readCSV(path string, checkHeader func(map[string]int) error, handleRow func(map[string]int, []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headerRow, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &RecordError{File: path, Line: 1, Err: errors.New("empty file")}
		}
		return &RecordError{File: path, Line: 1, Err: err}
	}
	header := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		header[name] = i
	}
	if err := checkHeader(header); err != nil {
		return &RecordError{File: path, Line: 1, Err: err}
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &RecordError{File: path, Line: line, Err: err}
		}
		if err := handleRow(header, row); err != nil {
			return &RecordError{File: path, Line: line, Err: err}
		}
	}
}

func requireColumns(header map[string]int, columns ...[]string) error {
	for _, names := range columns {
		if columnIndex(header, names) < 0 {
			return fmt.Errorf("%w: %s", ErrMissingColumn, names[0])
		}
	}
	return nil
}

func columnIndex(header map[string]int, names []string) int {
	for _, name := range names {
		if i, ok := header[name]; ok {
			return i
		}
	}
	return -1
}

func field(header map[string]int, row []string, names []string) string {
	i := columnIndex(header, names)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
