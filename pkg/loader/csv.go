// Package loader turns source data (loc.csv exports, project lists and
// git history) into the in-memory models the analyzers work on. It is
// the only place where parsing happens.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/panbanda/commitscope/pkg/models"
)

// Column names recognised in a loc.csv header.
const (
	ColFile     = "file"
	ColType     = "type"
	ColCommit   = "commit"
	ColDate     = "date"
	ColTime     = "time"
	ColTimezone = "timezone"
	ColDatetime = "datetime"
	ColLength   = "length"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

var clockLayouts = []string{"15:04:05", "15:04"}

// zonedClockLayouts accept a time column that carries its own UTC offset,
// as `git log --date=iso-strict` style exports do.
var zonedClockLayouts = []string{"15:04:05Z07:00", "15:04Z07:00"}

// LoadCSV reads change records from a loc.csv file.
func LoadCSV(path string) ([]models.ChangeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadCSV parses change records from delimited text with a header row.
// Parsing stops at the first bad row with a *models.ParseError.
func ReadCSV(r io.Reader) ([]models.ChangeRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []models.ChangeRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	records := []models.ChangeRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		rec, err := cols.parse(row, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

type columns map[string]int

func indexColumns(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	required := []string{ColFile, ColCommit, ColLength}
	if _, ok := cols[ColDatetime]; !ok {
		required = append(required, ColDate)
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (c columns) parse(row []string, line int) (models.ChangeRecord, error) {
	ts, err := c.timestamp(row, line)
	if err != nil {
		return models.ChangeRecord{}, err
	}

	rawLength := c.get(row, ColLength)
	lines, err := strconv.Atoi(rawLength)
	if err != nil {
		return models.ChangeRecord{}, &models.ParseError{Line: line, Column: ColLength, Value: rawLength, Err: err}
	}

	rec, err := models.NewChangeRecord(c.get(row, ColFile), c.get(row, ColType), c.get(row, ColCommit), ts, lines)
	if err != nil {
		column := ColCommit
		value := c.get(row, ColCommit)
		if errors.Is(err, models.ErrNegativeLines) {
			column, value = ColLength, rawLength
		}
		return models.ChangeRecord{}, &models.ParseError{Line: line, Column: column, Value: value, Err: err}
	}
	return rec, nil
}

func (c columns) timestamp(row []string, line int) (time.Time, error) {
	if raw := c.get(row, ColDatetime); raw != "" {
		ts, err := parseDate(raw)
		if err != nil {
			return time.Time{}, &models.ParseError{Line: line, Column: ColDatetime, Value: raw, Err: err}
		}
		return ts, nil
	}

	rawDate := c.get(row, ColDate)
	date, err := parseDate(rawDate)
	if err != nil {
		return time.Time{}, &models.ParseError{Line: line, Column: ColDate, Value: rawDate, Err: err}
	}

	loc := date.Location()
	hour, minute, sec := date.Clock()
	if rawClock := c.get(row, ColTime); rawClock != "" {
		clock, zoned, err := parseClock(rawClock)
		if err != nil {
			return time.Time{}, &models.ParseError{Line: line, Column: ColTime, Value: rawClock, Err: err}
		}
		hour, minute, sec = clock.Clock()
		if zoned {
			loc = clock.Location()
		}
	}

	// An explicit timezone column wins over an offset in the time column.
	if rawTZ := c.get(row, ColTimezone); rawTZ != "" {
		loc, err = parseZone(rawTZ)
		if err != nil {
			return time.Time{}, &models.ParseError{Line: line, Column: ColTimezone, Value: rawTZ, Err: err}
		}
	}

	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, sec, 0, loc), nil
}

func parseDate(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseClock parses a time-of-day value. The bool reports whether raw
// carried a UTC offset, in which case the time is in that offset.
func parseClock(raw string) (time.Time, bool, error) {
	var firstErr error
	for _, layout := range clockLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, false, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range zonedClockLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true, nil
		}
	}
	return time.Time{}, false, firstErr
}

func parseZone(raw string) (*time.Location, error) {
	for _, layout := range []string{"-07:00", "-0700", "Z07:00"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			_, offset := ts.Zone()
			return time.FixedZone(raw, offset), nil
		}
	}
	return time.LoadLocation(raw)
}
