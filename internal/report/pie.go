package report

import (
	"fmt"
	"math"
)

// Pie geometry is laid out on a 100x100 viewbox.
const (
	pieCenter = 50.0
	pieRadius = 40.0
)

// Point is a coordinate in the pie viewbox.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// PieSlice is one wedge of the spending pie.
type PieSlice struct {
	Category   string  `json:"category" yaml:"category"`
	Percent    float64 `json:"percent" yaml:"percent"`
	StartAngle float64 `json:"start_angle" yaml:"start_angle"` // degrees
	EndAngle   float64 `json:"end_angle" yaml:"end_angle"`
	Start      Point   `json:"start" yaml:"start"`
	End        Point   `json:"end" yaml:"end"`
	LargeArc   bool    `json:"large_arc" yaml:"large_arc"`
}

// Path returns the SVG path data for the wedge.
func (s PieSlice) Path() string {
	large := 0
	if s.LargeArc {
		large = 1
	}
	if s.Percent >= 100 {
		// A full circle cannot be drawn with one arc; split it in two.
		mid := pointAt(s.StartAngle + 180)
		return fmt.Sprintf("M %.3f %.3f A %g %g 0 1 1 %.3f %.3f A %g %g 0 1 1 %.3f %.3f Z",
			s.Start.X, s.Start.Y, pieRadius, pieRadius, mid.X, mid.Y, pieRadius, pieRadius, s.End.X, s.End.Y)
	}
	return fmt.Sprintf("M %g %g L %.3f %.3f A %g %g 0 %d 1 %.3f %.3f Z",
		pieCenter, pieCenter, s.Start.X, s.Start.Y, pieRadius, pieRadius, large, s.End.X, s.End.Y)
}

func pointAt(deg float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: pieCenter + pieRadius*math.Cos(rad),
		Y: pieCenter + pieRadius*math.Sin(rad),
	}
}

// PieSlices lays out wedges in the given order. Angles come from cumulative
// percentages so the last wedge always ends at 360.
func PieSlices(totals []CategoryTotal) []PieSlice {
	var sum float64
	for _, t := range totals {
		sum += t.Amount.InexactFloat64()
	}
	if sum <= 0 {
		return nil
	}

	out := make([]PieSlice, 0, len(totals))
	var cum float64
	for _, t := range totals {
		pct := t.Amount.InexactFloat64() / sum * 100
		start := cum / 100 * 360
		cum += pct
		end := cum / 100 * 360
		out = append(out, PieSlice{
			Category:   t.Category,
			Percent:    pct,
			StartAngle: start,
			EndAngle:   end,
			Start:      pointAt(start),
			End:        pointAt(end),
			LargeArc:   pct > 50,
		})
	}
	return out
}
