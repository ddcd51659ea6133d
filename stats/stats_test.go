package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/bikeshare/trip"
)

func derived(ts time.Time) trip.Record {
	return trip.Record{
		StartTime: ts,
		Derived:   true,
		Month:     ts.Month(),
		Weekday:   ts.Weekday(),
		Hour:      ts.Hour(),
	}
}

func tableOf(schema trip.Schema, records ...trip.Record) *trip.Table {
	t := trip.NewTable(trip.Chicago, schema)
	t.Records = append(t.Records, records...)
	return t
}

func TestEmptyInput(t *testing.T) {
	empty := trip.NewTable(trip.Chicago, trip.Schema{Demographics: true})

	_, err := Times(empty)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	_, err = Stations(empty)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	_, err = Durations(empty)
	assert.True(t, errors.Is(err, ErrEmptyInput))
	_, err = Users(empty)
	assert.True(t, errors.Is(err, ErrEmptyInput))

	var nilTable *trip.Table
	_, err = Durations(nilTable)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestDurations(t *testing.T) {
	table := tableOf(trip.Schema{},
		trip.Record{Duration: 100},
		trip.Record{Duration: 200},
		trip.Record{Duration: 300},
	)

	r, err := Durations(table)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Trips)
	assert.Equal(t, 600.0, r.Total)
	assert.Equal(t, 200.0, r.Mean)
	assert.Equal(t, 10*time.Minute, r.TotalDuration())
	assert.Equal(t, 200*time.Second, r.MeanDuration())
}

func TestTimesHourTieBreak(t *testing.T) {
	day := time.Date(2017, time.March, 1, 0, 0, 0, 0, time.UTC)
	hours := []int{9, 5, 9, 5}
	var records []trip.Record
	for _, h := range hours {
		records = append(records, derived(day.Add(time.Duration(h)*time.Hour)))
	}

	for i := 0; i < 10; i++ {
		r, err := Times(tableOf(trip.Schema{}, records...))
		require.NoError(t, err)
		assert.Equal(t, 5, r.Hour)
		assert.Equal(t, 2, r.HourCount)
	}

	// Row order does not change the winner.
	records[0], records[1] = records[1], records[0]
	r, err := Times(tableOf(trip.Schema{}, records...))
	require.NoError(t, err)
	assert.Equal(t, 5, r.Hour)
}

func TestTimes(t *testing.T) {
	table := tableOf(trip.Schema{},
		derived(time.Date(2017, time.January, 1, 9, 0, 0, 0, time.UTC)),  // Sunday
		derived(time.Date(2017, time.January, 8, 9, 30, 0, 0, time.UTC)), // Sunday
		derived(time.Date(2017, time.February, 6, 17, 0, 0, 0, time.UTC)), // Monday
	)

	r, err := Times(table)
	require.NoError(t, err)
	assert.Equal(t, time.January, r.Month)
	assert.Equal(t, 2, r.MonthCount)
	assert.Equal(t, "Sunday", r.Weekday)
	assert.Equal(t, 2, r.WeekdayCount)
	assert.Equal(t, 9, r.Hour)
}

func TestTimesWeekdayTieBreakByName(t *testing.T) {
	table := tableOf(trip.Schema{},
		derived(time.Date(2017, time.January, 2, 9, 0, 0, 0, time.UTC)), // Monday
		derived(time.Date(2017, time.January, 6, 9, 0, 0, 0, time.UTC)), // Friday
	)

	r, err := Times(table)
	require.NoError(t, err)
	assert.Equal(t, "Friday", r.Weekday)
}

func TestTimesDerivesOnTheFly(t *testing.T) {
	table := tableOf(trip.Schema{},
		trip.Record{StartTime: time.Date(2017, time.April, 4, 22, 0, 0, 0, time.UTC)},
	)

	r, err := Times(table)
	require.NoError(t, err)
	assert.Equal(t, time.April, r.Month)
	assert.Equal(t, "Tuesday", r.Weekday)
	assert.Equal(t, 22, r.Hour)
}

func TestStations(t *testing.T) {
	table := tableOf(trip.Schema{},
		trip.Record{StartStation: "B", EndStation: "A"},
		trip.Record{StartStation: "A", EndStation: "B"},
		trip.Record{StartStation: "A", EndStation: "C"},
		trip.Record{StartStation: "B", EndStation: "A"},
		trip.Record{StartStation: "C", EndStation: "B"},
	)

	r, err := Stations(table)
	require.NoError(t, err)
	// A and B both start twice; A wins the tie.
	assert.Equal(t, "A", r.Start)
	assert.Equal(t, 2, r.StartCount)
	// A and B both end twice.
	assert.Equal(t, "A", r.End)
	assert.Equal(t, Route{Start: "B", End: "A"}, r.Route)
	assert.Equal(t, 2, r.RouteCount)
}

func TestStationsRoutesAreOrdered(t *testing.T) {
	table := tableOf(trip.Schema{},
		trip.Record{StartStation: "B", EndStation: "A"},
		trip.Record{StartStation: "A", EndStation: "B"},
	)

	r, err := Stations(table)
	require.NoError(t, err)
	// (A,B) and (B,A) are one trip each; the pair tie goes to (A,B).
	assert.Equal(t, Route{Start: "A", End: "B"}, r.Route)
	assert.Equal(t, 1, r.RouteCount)
}

func TestUsersWithoutDemographics(t *testing.T) {
	table := tableOf(trip.Schema{},
		trip.Record{UserType: "Subscriber"},
		trip.Record{UserType: "Customer"},
		trip.Record{UserType: "Subscriber"},
	)
	table.City = trip.Washington

	r, err := Users(table)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"Subscriber", 2}, {"Customer", 1}}, r.UserTypes)
	assert.Nil(t, r.Demographics)
}

func TestUsersWithDemographics(t *testing.T) {
	rec := func(userType, gender string, year int) trip.Record {
		return trip.Record{UserType: userType, Demographics: &trip.Demographics{Gender: gender, BirthYear: year}}
	}
	table := tableOf(trip.Schema{Demographics: true},
		rec("Subscriber", "Male", 1985),
		rec("Subscriber", "Female", 1992),
		rec("Customer", "", 0),
		rec("Subscriber", "Male", 1992),
		rec("Dependent", "Female", 1985),
		rec("", "Male", 1939),
	)

	r, err := Users(table)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"Subscriber", 3}, {"Customer", 1}, {"Dependent", 1}}, r.UserTypes)

	require.NotNil(t, r.Demographics)
	assert.Equal(t, []Count{{"Male", 3}, {"Female", 2}}, r.Demographics.Genders)

	require.NotNil(t, r.Demographics.BirthYears)
	by := r.Demographics.BirthYears
	assert.Equal(t, 1985, by.Common)
	assert.Equal(t, 2, by.CommonCount)
	assert.Equal(t, 1992, by.MostRecent)
	assert.Equal(t, 1939, by.Earliest)
}

func TestUsersWithoutKnownBirthYears(t *testing.T) {
	table := tableOf(trip.Schema{Demographics: true},
		trip.Record{UserType: "Customer", Demographics: &trip.Demographics{}},
	)

	r, err := Users(table)
	require.NoError(t, err)
	require.NotNil(t, r.Demographics)
	assert.Empty(t, r.Demographics.Genders)
	assert.Nil(t, r.Demographics.BirthYears)
}
