package shape

import (
	"io"
	"math/rand"

	"github.com/gocarina/gocsv"
)

// Point is one sampled particle in a CSV export.
type Point struct {
	Shape string  `csv:"shape"`
	Index int     `csv:"index"`
	X     float32 `csv:"x"`
	Y     float32 `csv:"y"`
	Z     float32 `csv:"z"`
}

// Sample returns count points of each shape in ids, in order.
func Sample(ids []ID, count int, rng *rand.Rand) []Point {
	count = max(count, 0)
	points := make([]Point, 0, len(ids)*count)
	for _, id := range ids {
		buf := Generate(id, count, rng)
		name := id.String()
		for i := 0; i < count; i++ {
			points = append(points, Point{Shape: name, Index: i, X: buf[i*3], Y: buf[i*3+1], Z: buf[i*3+2]})
		}
	}
	return points
}

// WriteCSV writes Sample(ids, count, rng) to w with a header row.
func WriteCSV(w io.Writer, ids []ID, count int, rng *rand.Rand) error {
	return gocsv.Marshal(Sample(ids, count, rng), w)
}
