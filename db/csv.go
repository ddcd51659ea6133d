package db

import (
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"

	"github.com/TFMV/bikeshare/trip"
)

// TimestampPolicy decides what happens to rows whose start time cannot be
// parsed.
type TimestampPolicy int

const (
	// Strict fails the whole load on the first malformed start time.
	Strict TimestampPolicy = iota
	// Lenient drops malformed rows and counts them in trip.Table.Dropped.
	Lenient
)

// ParseTimestampPolicy parses "strict" or "lenient".
func ParseTimestampPolicy(s string) (TimestampPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown timestamp policy %q", s)
	}
}

func (p TimestampPolicy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// timestampLayouts are tried in order. The published files use the first.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a source start time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// decoder turns a CSV payload into trip records through Arrow record
// batches.
type decoder struct {
	source string
	policy TimestampPolicy
	chunk  int

	schema  trip.Schema
	records []trip.Record
	dropped int
	rows    int
}

// detectSchema reads the header row. Demographics are present only when
// both demographic columns are. hasRows reports whether any data row
// follows the header.
func detectSchema(data []byte) (schema trip.Schema, hasRows bool, err error) {
	r := stdcsv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return trip.Schema{}, false, fmt.Errorf("could not read header: %w", err)
	}
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return trip.Schema{}, false, fmt.Errorf("missing column %q", col)
		}
	}
	schema = trip.Schema{Demographics: present[ColGender] && present[ColBirthYear]}
	if _, err := r.Read(); errors.Is(err, io.EOF) {
		return schema, false, nil
	}
	return schema, true, nil
}

func (d *decoder) decodeCSV(data []byte) error {
	schema, hasRows, err := detectSchema(data)
	if err != nil {
		return unavailable(d.source, err)
	}
	d.schema = schema
	if !hasRows {
		return nil
	}

	reader := csv.NewInferringReader(bytes.NewReader(data),
		csv.WithAllocator(Pool),
		csv.WithHeader(true),
		csv.WithChunk(d.chunk),
		csv.WithIncludeColumns(includeColumns(schema)),
		csv.WithColumnTypes(columnTypes),
		csv.WithNullReader(true, ""),
	)
	defer reader.Release()

	for reader.Next() {
		if err := d.appendBatch(reader.Record()); err != nil {
			return err
		}
	}
	if err := reader.Err(); err != nil {
		return unavailable(d.source, err)
	}
	return nil
}

// appendBatch converts one Arrow record batch, columns ordered as
// includeColumns(d.schema).
func (d *decoder) appendBatch(rec arrow.Record) error {
	starts, ok1 := rec.Column(0).(*array.String)
	fromStations, ok2 := rec.Column(1).(*array.String)
	toStations, ok3 := rec.Column(2).(*array.String)
	durations, ok4 := rec.Column(3).(*array.Float64)
	userTypes, ok5 := rec.Column(4).(*array.String)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return unavailable(d.source, fmt.Errorf("unexpected column types in %s", rec.Schema()))
	}
	var genders *array.String
	var years *array.Float64
	if d.schema.Demographics {
		var okG, okY bool
		genders, okG = rec.Column(5).(*array.String)
		years, okY = rec.Column(6).(*array.Float64)
		if !okG || !okY {
			return unavailable(d.source, fmt.Errorf("unexpected column types in %s", rec.Schema()))
		}
	}

	for i := 0; i < int(rec.NumRows()); i++ {
		d.rows++
		raw := stringAt(starts, i)
		ts, err := ParseTimestamp(raw)
		if err != nil {
			if d.policy == Lenient {
				d.dropped++
				continue
			}
			return &MalformedTimestampError{Source: d.source, Row: d.rows, Value: raw}
		}

		if durations.IsNull(i) || durations.Value(i) < 0 || math.IsNaN(durations.Value(i)) {
			return unavailable(d.source, fmt.Errorf("row %d: invalid trip duration", d.rows))
		}

		r := trip.Record{
			StartTime:    ts,
			StartStation: stringAt(fromStations, i),
			EndStation:   stringAt(toStations, i),
			Duration:     durations.Value(i),
			UserType:     stringAt(userTypes, i),
		}
		if d.schema.Demographics {
			r.Demographics = &trip.Demographics{Gender: stringAt(genders, i)}
			if !years.IsNull(i) {
				r.Demographics.BirthYear = int(years.Value(i))
			}
		}
		d.records = append(d.records, r)
	}
	return nil
}

func stringAt(col *array.String, i int) string {
	if col.IsNull(i) {
		return ""
	}
	return col.Value(i)
}
