// Package trip defines the bike-share trip record and the in-memory trip table
// every other package operates on.
package trip

import (
	"strings"
	"time"
)

// City identifies one of the supported bike-share systems.
type City string

const (
	Chicago     City = "chicago"
	NewYorkCity City = "new york city"
	Washington  City = "washington"
)

// Cities lists the supported cities in prompt order.
var Cities = []City{Chicago, NewYorkCity, Washington}

// ParseCity normalizes a user supplied city name. The second return value
// reports whether the name is one of Cities.
func ParseCity(s string) (City, bool) {
	c := City(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Cities {
		if c == known {
			return c, true
		}
	}
	return c, false
}

func (c City) String() string { return string(c) }

// Demographics holds the rider attributes only some cities publish.
// Missing values are left at their zero value.
type Demographics struct {
	Gender    string
	BirthYear int
}

// Record is one bike-share ride.
type Record struct {
	StartTime    time.Time
	StartStation string
	EndStation   string
	// Duration is the trip length in seconds.
	Duration float64
	UserType string
	// Demographics is nil when the table schema has no demographic columns.
	Demographics *Demographics

	// Derived from StartTime.
	Derived bool
	Month   time.Month
	Weekday time.Weekday
	Hour    int
}

// DayName returns the capitalized weekday name of a derived record.
func (r Record) DayName() string {
	return r.Weekday.String()
}

// Schema describes which optional columns a table carries.
type Schema struct {
	Demographics bool
}

// Table is an ordered sequence of records sharing one schema. Records keep
// the row order of the source they were loaded from.
type Table struct {
	City    City
	Schema  Schema
	Records []Record
	// Dropped counts source rows skipped while loading.
	Dropped int
}

// NewTable creates an empty table for city.
func NewTable(city City, schema Schema) *Table {
	return &Table{City: city, Schema: schema, Records: make([]Record, 0)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports whether the table has no records.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// WithRecords returns a table with t's metadata and the given records.
func (t *Table) WithRecords(records []Record) *Table {
	return &Table{City: t.City, Schema: t.Schema, Records: records, Dropped: t.Dropped}
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	records := make([]Record, len(t.Records))
	copy(records, t.Records)
	for i := range records {
		if d := records[i].Demographics; d != nil {
			dc := *d
			records[i].Demographics = &dc
		}
	}
	return t.WithRecords(records)
}
