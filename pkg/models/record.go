package models

import (
	"errors"
	"fmt"
	"time"
)

// OtherType is the reserved type label for records with no type.
const OtherType = "other"

// Validation errors returned by NewChangeRecord.
var (
	ErrEmptyCommitID = errors.New("commit id is empty")
	ErrNegativeLines = errors.New("lines changed is negative")
	ErrZeroTimestamp = errors.New("timestamp is zero")
)

// ChangeRecord is one file-level change attributed to a commit.
type ChangeRecord struct {
	File         string    `json:"file"`
	Type         string    `json:"type"`
	CommitID     string    `json:"commit"`
	Timestamp    time.Time `json:"timestamp"`
	LinesChanged int       `json:"lines_changed"`
}

// NewChangeRecord validates the fields and builds a record.
// An empty type is normalised to OtherType.
func NewChangeRecord(file, typ, commitID string, ts time.Time, lines int) (ChangeRecord, error) {
	if commitID == "" {
		return ChangeRecord{}, ErrEmptyCommitID
	}
	if lines < 0 {
		return ChangeRecord{}, ErrNegativeLines
	}
	if ts.IsZero() {
		return ChangeRecord{}, ErrZeroTimestamp
	}
	return ChangeRecord{
		File:         file,
		Type:         NormalizeType(typ),
		CommitID:     commitID,
		Timestamp:    ts,
		LinesChanged: lines,
	}, nil
}

// TypeLabel returns the record type, or OtherType when it is empty.
func (r ChangeRecord) TypeLabel() string {
	return NormalizeType(r.Type)
}

// NormalizeType maps an empty label to OtherType.
func NormalizeType(typ string) string {
	if typ == "" {
		return OtherType
	}
	return typ
}

// FractionalHour returns the time of day as hours in [0,24).
func FractionalHour(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// ParseError reports a source value that could not be parsed into a record.
type ParseError struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Err    error  `json:"-"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: cannot parse %s %q: %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot parse %s %q: %v", e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
