package stats

import (
	"github.com/TFMV/bikeshare/trip"
)

// UserReport holds the rider breakdown of a table.
type UserReport struct {
	// UserTypes is ordered by descending count. Blank user types are not
	// counted.
	UserTypes []Count
	// Demographics is nil when the table schema has no demographic columns.
	Demographics *DemographicsReport
}

// DemographicsReport holds gender counts and birth year statistics.
type DemographicsReport struct {
	Genders []Count
	// BirthYears is nil when no record has a known birth year.
	BirthYears *BirthYearReport
}

// BirthYearReport holds the earliest, most recent and most common birth
// year.
type BirthYearReport struct {
	Common      int
	CommonCount int
	MostRecent  int
	Earliest    int
}

// Users counts user types and, when the schema carries them, genders and
// birth years.
func Users(t *trip.Table) (UserReport, error) {
	if t.Empty() {
		return UserReport{}, emptyInput("user stats")
	}

	types := newCounter[string]()
	for _, rec := range t.Records {
		if rec.UserType != "" {
			types.add(rec.UserType)
		}
	}
	r := UserReport{UserTypes: valueCounts(types)}
	if t.Schema.Demographics {
		r.Demographics = demographics(t.Records)
	}
	return r, nil
}

func demographics(records []trip.Record) *DemographicsReport {
	genders := newCounter[string]()
	years := newCounter[int]()
	var by BirthYearReport
	for _, rec := range records {
		d := rec.Demographics
		if d == nil {
			continue
		}
		if d.Gender != "" {
			genders.add(d.Gender)
		}
		if d.BirthYear == 0 {
			continue
		}
		if years.len() == 0 || d.BirthYear > by.MostRecent {
			by.MostRecent = d.BirthYear
		}
		if years.len() == 0 || d.BirthYear < by.Earliest {
			by.Earliest = d.BirthYear
		}
		years.add(d.BirthYear)
	}

	r := &DemographicsReport{Genders: valueCounts(genders)}
	if common, n, ok := years.mode(); ok {
		by.Common, by.CommonCount = common, n
		r.BirthYears = &by
	}
	return r
}
