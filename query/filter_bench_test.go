// go test -bench=. -benchmem ./query
package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/TFMV/bikeshare/trip"
)

const (
	smallSize  = 1000
	mediumSize = 10000
	largeSize  = 100000
)

// createBenchTable creates a table with n trips spread over six months.
func createBenchTable(n int) *trip.Table {
	table := trip.NewTable(trip.NewYorkCity, trip.Schema{})
	table.Records = make([]trip.Record, n)
	base := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		table.Records[i] = trip.Record{
			StartTime:    base.Add(time.Duration(i%(180*24)) * time.Hour),
			StartStation: fmt.Sprintf("Station %d", i%100),
			EndStation:   fmt.Sprintf("Station %d", (i*7)%100),
			Duration:     float64(i % 3600),
			UserType:     "Subscriber",
		}
	}
	return table
}

func BenchmarkDerive(b *testing.B) {
	for _, size := range []int{smallSize, mediumSize, largeSize} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			table := createBenchTable(size)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				Derive(table)
			}
		})
	}
}

func BenchmarkFilter(b *testing.B) {
	for _, size := range []int{smallSize, mediumSize, largeSize} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			table := Derive(createBenchTable(size))

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := Filter(table, "march", "friday"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
