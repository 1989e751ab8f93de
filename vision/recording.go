package vision

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/oracle/components"
)

// LandmarkRow is one landmark of one recorded frame. Frames without a hand
// are stored as a single row with Index -1.
type LandmarkRow struct {
	Frame  uint64  `csv:"frame"`
	TimeMS int64   `csv:"time_ms"`
	Index  int     `csv:"index"`
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	Z      float64 `csv:"z"`
}

// ReadRecording parses a landmark CSV into frames ordered by frame number.
func ReadRecording(r io.Reader) ([]Frame, error) {
	var rows []LandmarkRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing landmark recording: %w", err)
	}

	byFrame := make(map[uint64]*Frame)
	var order []uint64
	for _, row := range rows {
		fr, ok := byFrame[row.Frame]
		if !ok {
			fr = &Frame{Seq: row.Frame, Time: time.Duration(row.TimeMS) * time.Millisecond}
			byFrame[row.Frame] = fr
			order = append(order, row.Frame)
		}
		if row.Index < 0 {
			continue
		}
		if row.Index >= len(fr.Landmarks) {
			grown := make([]components.Landmark, row.Index+1)
			copy(grown, fr.Landmarks)
			fr.Landmarks = grown
		}
		fr.Landmarks[row.Index] = components.Landmark{X: row.X, Y: row.Y, Z: row.Z}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	frames := make([]Frame, 0, len(order))
	for _, seq := range order {
		frames = append(frames, *byFrame[seq])
	}
	return frames, nil
}

// WriteRecording writes frames in the format ReadRecording accepts.
func WriteRecording(w io.Writer, frames []Frame) error {
	rows := make([]LandmarkRow, 0, len(frames)*21)
	for _, fr := range frames {
		ms := fr.Time.Milliseconds()
		if len(fr.Landmarks) == 0 {
			rows = append(rows, LandmarkRow{Frame: fr.Seq, TimeMS: ms, Index: -1})
			continue
		}
		for i, lm := range fr.Landmarks {
			rows = append(rows, LandmarkRow{Frame: fr.Seq, TimeMS: ms, Index: i, X: lm.X, Y: lm.Y, Z: lm.Z})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing landmark recording: %w", err)
	}
	return nil
}
