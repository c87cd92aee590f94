package airports

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"air-demand-service/internal/domain"
	"air-demand-service/internal/platform/logging"

	"go.uber.org/zap"
)

// Field positions of the decimal latitude and longitude in a Global Airport
// Database record.
const (
	latField = 14
	lonField = 15
)

// LoadFiles builds a Store from the Global Airport Database at dbPath and the
// destinations CSV at destinationsPath. Destinations missing from the position
// database are kept with nil coordinates.
func LoadFiles(dbPath, destinationsPath string) (*Store, error) {
	dbFile, err := os.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	defer dbFile.Close()

	positions, err := ParsePositions(dbFile)
	if err != nil {
		return nil, fmt.Errorf("load airports: %s: %w", dbPath, err)
	}

	destFile, err := os.Open(destinationsPath)
	if err != nil {
		return nil, fmt.Errorf("load airports: %w", err)
	}
	defer destFile.Close()

	airports, err := ParseDestinations(destFile, positions)
	if err != nil {
		return nil, fmt.Errorf("load airports: %s: %w", destinationsPath, err)
	}

	logging.Named("airports").Info("airport data loaded",
		zap.Int("positions", len(positions)),
		zap.Int("destinations", len(airports)),
	)
	return NewStore(airports), nil
}

// ParsePositions reads colon-separated Global Airport Database records and
// returns the decimal position of every ICAO code. Blank lines are ignored.
func ParsePositions(r io.Reader) (map[string]domain.Coordinates, error) {
	positions := make(map[string]domain.Coordinates)

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, ":")
		if len(fields) <= lonField {
			return nil, fmt.Errorf("line %d: want at least %d fields, got %d", line, lonField+1, len(fields))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[latField]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[lonField]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}

		positions[strings.ToUpper(strings.TrimSpace(fields[0]))] = domain.Coordinates{Lat: lat, Lon: lon}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}

// ParseDestinations reads icao,full_name,location,country,time_zone rows after
// a header line and attaches positions where known.
func ParseDestinations(r io.Reader, positions map[string]domain.Coordinates) ([]domain.Airport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("header: %w", err)
	}

	var airports []domain.Airport
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: want 5 columns, got %d", line, len(rec))
		}

		a := domain.Airport{
			ICAO:     strings.ToUpper(strings.TrimSpace(rec[0])),
			FullName: strings.TrimSpace(rec[1]),
			Location: strings.TrimSpace(rec[2]),
			Country:  strings.TrimSpace(rec[3]),
			TimeZone: strings.TrimSpace(rec[4]),
		}
		if pos, ok := positions[a.ICAO]; ok {
			a.Coordinates = &pos
		}
		airports = append(airports, a)
	}

	return airports, nil
}
