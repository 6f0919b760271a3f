package report

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
)

// slicePalette is cycled through for pie wedges.
var slicePalette = []string{
	"#3aa99f", "#4385be", "#da702c", "#d0a215", "#8b7ec8", "#ce5d97", "#879a39", "#d14d41",
}

const legendText = `font-size="6" font-family="sans-serif"`

// WriteSVG renders the category totals as a pie chart with a legend.
func WriteSVG(w io.Writer, totals []CategoryTotal) error {
	ew := &errWriter{w: w}
	slices := PieSlices(totals)
	height := max(100, 12+len(slices)*10)

	canvas := svg.New(ew)
	canvas.Startview(660, height*3, 0, 0, 220, height)
	if len(slices) == 0 {
		canvas.Circle(int(pieCenter), int(pieCenter), int(pieRadius), `fill="#cecdc3"`)
		canvas.Text(110, 52, "No expenses", legendText)
	}

	// Rotate so the first wedge starts at 12 o'clock.
	canvas.Gtransform(fmt.Sprintf("rotate(-90 %g %g)", pieCenter, pieCenter))
	for i, s := range slices {
		canvas.Group()
		canvas.Title(fmt.Sprintf("%s %.1f%%", s.Category, s.Percent))
		canvas.Path(s.Path(), fmt.Sprintf(`fill="%s"`, slicePalette[i%len(slicePalette)]))
		canvas.Gend()
	}
	canvas.Gend()

	for i, s := range slices {
		y := 12 + i*10
		canvas.Rect(105, y-5, 6, 6, fmt.Sprintf(`fill="%s"`, slicePalette[i%len(slicePalette)]))
		canvas.Text(114, y, fmt.Sprintf("%s  %.1f%%", s.Category, s.Percent), legendText)
	}
	canvas.End()
	return ew.err
}

// errWriter keeps the first write error, since the canvas methods do not
// return one.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
