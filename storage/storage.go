// Package storage converts trip tables to and from Arrow record batches and
// reads and writes them as Arrow IPC files.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/bikeshare/trip"
)

// Extension is the file extension of Arrow IPC trip files.
const Extension = ".arrow"

const (
	metaCity         = "bikeshare.city"
	metaDemographics = "bikeshare.demographics"
	metaDropped      = "bikeshare.dropped"
)

// Column names of the IPC schema.
const (
	FieldStartTime    = "start_time"
	FieldStartStation = "start_station"
	FieldEndStation   = "end_station"
	FieldTripDuration = "trip_duration"
	FieldUserType     = "user_type"
	FieldGender       = "gender"
	FieldBirthYear    = "birth_year"
	FieldMonth        = "month"
	FieldDayOfWeek    = "day_of_week"
	FieldHour         = "hour"
)

// Schema returns the Arrow schema of a table. Demographic fields are only
// present when the table carries them.
func Schema(t *trip.Table) *arrow.Schema {
	fields := []arrow.Field{
		{Name: FieldStartTime, Type: arrow.FixedWidthTypes.Timestamp_s},
		{Name: FieldStartStation, Type: arrow.BinaryTypes.String},
		{Name: FieldEndStation, Type: arrow.BinaryTypes.String},
		{Name: FieldTripDuration, Type: arrow.PrimitiveTypes.Float64},
		{Name: FieldUserType, Type: arrow.BinaryTypes.String},
	}
	if t.Schema.Demographics {
		fields = append(fields,
			arrow.Field{Name: FieldGender, Type: arrow.BinaryTypes.String, Nullable: true},
			arrow.Field{Name: FieldBirthYear, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		)
	}
	fields = append(fields,
		arrow.Field{Name: FieldMonth, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		arrow.Field{Name: FieldDayOfWeek, Type: arrow.BinaryTypes.String, Nullable: true},
		arrow.Field{Name: FieldHour, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	)
	meta := arrow.NewMetadata(
		[]string{metaCity, metaDemographics, metaDropped},
		[]string{string(t.City), strconv.FormatBool(t.Schema.Demographics), strconv.Itoa(t.Dropped)},
	)
	return arrow.NewSchema(fields, &meta)
}

// Encode builds a single Arrow record holding every row of t. Derived
// columns are null for records that have not been derived. The caller must
// Release the record.
func Encode(mem memory.Allocator, t *trip.Table) arrow.Record {
	schema := Schema(t)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	col := func(name string) array.Builder {
		return builder.Field(schema.FieldIndices(name)[0])
	}
	starts := col(FieldStartTime).(*array.TimestampBuilder)
	fromStations := col(FieldStartStation).(*array.StringBuilder)
	toStations := col(FieldEndStation).(*array.StringBuilder)
	durations := col(FieldTripDuration).(*array.Float64Builder)
	userTypes := col(FieldUserType).(*array.StringBuilder)
	months := col(FieldMonth).(*array.Int64Builder)
	days := col(FieldDayOfWeek).(*array.StringBuilder)
	hours := col(FieldHour).(*array.Int64Builder)

	var genders *array.StringBuilder
	var years *array.Int64Builder
	if t.Schema.Demographics {
		genders = col(FieldGender).(*array.StringBuilder)
		years = col(FieldBirthYear).(*array.Int64Builder)
	}

	for _, rec := range t.Records {
		starts.Append(arrow.Timestamp(rec.StartTime.Unix()))
		fromStations.Append(rec.StartStation)
		toStations.Append(rec.EndStation)
		durations.Append(rec.Duration)
		userTypes.Append(rec.UserType)

		if t.Schema.Demographics {
			d := rec.Demographics
			if d == nil {
				d = &trip.Demographics{}
			}
			if d.Gender == "" {
				genders.AppendNull()
			} else {
				genders.Append(d.Gender)
			}
			if d.BirthYear == 0 {
				years.AppendNull()
			} else {
				years.Append(int64(d.BirthYear))
			}
		}

		if rec.Derived {
			months.Append(int64(rec.Month))
			days.Append(rec.DayName())
			hours.Append(int64(rec.Hour))
		} else {
			months.AppendNull()
			days.AppendNull()
			hours.AppendNull()
		}
	}
	return builder.NewRecord()
}

// Codec selects the body compression of written files.
type Codec int

const (
	Uncompressed Codec = iota
	LZ4
	Zstd
)

// ParseCodec parses "none", "lz4" or "zstd".
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return Uncompressed, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return Uncompressed, fmt.Errorf("unknown compression codec %q", s)
	}
}

func (c Codec) option() (ipc.Option, bool) {
	switch c {
	case LZ4:
		return ipc.WithLZ4(), true
	case Zstd:
		return ipc.WithZstd(), true
	default:
		return nil, false
	}
}

// Write encodes t as an Arrow IPC file. Readers detect the codec from the
// file itself.
func Write(w io.Writer, t *trip.Table, codec Codec) error {
	mem := memory.NewGoAllocator()
	record := Encode(mem, t)
	defer record.Release()

	opts := []ipc.Option{ipc.WithSchema(record.Schema()), ipc.WithAllocator(mem)}
	if opt, ok := codec.option(); ok {
		opts = append(opts, opt)
	}
	writer, err := ipc.NewFileWriter(w, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Arrow file writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write record to Arrow file: %w", err)
	}
	return writer.Close()
}

// SaveToDisk writes t to path in the Arrow IPC file format.
func SaveToDisk(t *trip.Table, path string, codec Codec) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %q: %w", path, err)
	}
	if err := Write(file, t, codec); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// LoadFromDisk reads a table written by SaveToDisk.
func LoadFromDisk(path string) (*trip.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	return Decode(data)
}

// Decode reads an Arrow IPC file held in memory.
func Decode(data []byte) (*trip.Table, error) {
	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	t, err := tableFromSchema(reader.Schema())
	if err != nil {
		return nil, err
	}
	for i := 0; i < reader.NumRecords(); i++ {
		rec, err := reader.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d from file: %w", i, err)
		}
		err = appendRecords(t, rec)
		rec.Release()
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func tableFromSchema(schema *arrow.Schema) (*trip.Table, error) {
	meta := schema.Metadata()
	t := trip.NewTable("", trip.Schema{})
	if i := meta.FindKey(metaCity); i >= 0 {
		t.City = trip.City(meta.Values()[i])
	}
	if i := meta.FindKey(metaDropped); i >= 0 {
		t.Dropped, _ = strconv.Atoi(meta.Values()[i])
	}
	t.Schema.Demographics = schema.HasField(FieldGender) && schema.HasField(FieldBirthYear)
	for _, name := range []string{FieldStartTime, FieldStartStation, FieldEndStation, FieldTripDuration, FieldUserType, FieldMonth, FieldDayOfWeek, FieldHour} {
		if !schema.HasField(name) {
			return nil, fmt.Errorf("missing field %q", name)
		}
	}
	return t, nil
}

func appendRecords(t *trip.Table, rec arrow.Record) error {
	schema := rec.Schema()
	column := func(name string) arrow.Array {
		return rec.Column(schema.FieldIndices(name)[0])
	}
	starts, ok1 := column(FieldStartTime).(*array.Timestamp)
	fromStations, ok2 := column(FieldStartStation).(*array.String)
	toStations, ok3 := column(FieldEndStation).(*array.String)
	durations, ok4 := column(FieldTripDuration).(*array.Float64)
	userTypes, ok5 := column(FieldUserType).(*array.String)
	months, ok6 := column(FieldMonth).(*array.Int64)
	days, ok7 := column(FieldDayOfWeek).(*array.String)
	hours, ok8 := column(FieldHour).(*array.Int64)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8) {
		return fmt.Errorf("unexpected column types in %s", schema)
	}
	var genders *array.String
	var years *array.Int64
	if t.Schema.Demographics {
		var okG, okY bool
		genders, okG = column(FieldGender).(*array.String)
		years, okY = column(FieldBirthYear).(*array.Int64)
		if !okG || !okY {
			return fmt.Errorf("unexpected column types in %s", schema)
		}
	}

	for i := 0; i < int(rec.NumRows()); i++ {
		r := trip.Record{
			StartTime:    starts.Value(i).ToTime(arrow.Second),
			StartStation: fromStations.Value(i),
			EndStation:   toStations.Value(i),
			Duration:     durations.Value(i),
			UserType:     userTypes.Value(i),
		}
		if t.Schema.Demographics {
			r.Demographics = &trip.Demographics{}
			if !genders.IsNull(i) {
				r.Demographics.Gender = genders.Value(i)
			}
			if !years.IsNull(i) {
				r.Demographics.BirthYear = int(years.Value(i))
			}
		}
		if !months.IsNull(i) {
			wd, err := parseWeekday(days.Value(i))
			if err != nil {
				return err
			}
			r.Derived = true
			r.Month = time.Month(months.Value(i))
			r.Weekday = wd
			r.Hour = int(hours.Value(i))
		}
		t.Records = append(t.Records, r)
	}
	return nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == name {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("invalid day_of_week %q", name)
}
