package db

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/bikeshare/trip"
)

// Pool is the Go memory allocator used by Arrow.
var Pool = memory.NewGoAllocator()

// Column names of the published bike-share CSV files.
const (
	ColStartTime    = "Start Time"
	ColStartStation = "Start Station"
	ColEndStation   = "End Station"
	ColTripDuration = "Trip Duration"
	ColUserType     = "User Type"
	ColGender       = "Gender"
	ColBirthYear    = "Birth Year"
)

// DefaultSources maps each city to its source name.
var DefaultSources = map[trip.City]string{
	trip.Chicago:     "chicago.csv",
	trip.NewYorkCity: "new_york_city.csv",
	trip.Washington:  "washington.csv",
}

var requiredColumns = []string{ColStartTime, ColStartStation, ColEndStation, ColTripDuration, ColUserType}

var demographicColumns = []string{ColGender, ColBirthYear}

// columnTypes disables Arrow type inference for the columns we read. Start
// times stay strings so malformed values can be reported per row.
var columnTypes = map[string]arrow.DataType{
	ColStartTime:    arrow.BinaryTypes.String,
	ColStartStation: arrow.BinaryTypes.String,
	ColEndStation:   arrow.BinaryTypes.String,
	ColTripDuration: arrow.PrimitiveTypes.Float64,
	ColUserType:     arrow.BinaryTypes.String,
	ColGender:       arrow.BinaryTypes.String,
	ColBirthYear:    arrow.PrimitiveTypes.Float64,
}

// includeColumns returns the columns to read for a schema, in a fixed order.
func includeColumns(schema trip.Schema) []string {
	cols := append([]string(nil), requiredColumns...)
	if schema.Demographics {
		cols = append(cols, demographicColumns...)
	}
	return cols
}
