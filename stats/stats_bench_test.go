// go test -bench=. -benchmem ./stats
package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/TFMV/bikeshare/trip"
)

// createBenchTable creates a derived table of n trips with demographics.
func createBenchTable(n int) *trip.Table {
	table := trip.NewTable(trip.Chicago, trip.Schema{Demographics: true})
	table.Records = make([]trip.Record, n)
	base := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		start := base.Add(time.Duration(i%(180*24)) * time.Hour)
		table.Records[i] = trip.Record{
			StartTime:    start,
			StartStation: fmt.Sprintf("Station %d", i%100),
			EndStation:   fmt.Sprintf("Station %d", (i*7)%100),
			Duration:     float64(i % 3600),
			UserType:     []string{"Subscriber", "Customer"}[i%2],
			Demographics: &trip.Demographics{Gender: []string{"Male", "Female", ""}[i%3], BirthYear: 1950 + i%50},
			Derived:      true,
			Month:        start.Month(),
			Weekday:      start.Weekday(),
			Hour:         start.Hour(),
		}
	}
	return table
}

func BenchmarkAggregators(b *testing.B) {
	aggregators := map[string]func(*trip.Table) error{
		"times":     func(t *trip.Table) error { _, err := Times(t); return err },
		"stations":  func(t *trip.Table) error { _, err := Stations(t); return err },
		"durations": func(t *trip.Table) error { _, err := Durations(t); return err },
		"users":     func(t *trip.Table) error { _, err := Users(t); return err },
	}
	for _, size := range []int{1000, 100000} {
		table := createBenchTable(size)
		for name, fn := range aggregators {
			b.Run(fmt.Sprintf("%s/size_%d", name, size), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if err := fn(table); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
