package report

import (
	"errors"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg" // png canvas
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
	barWidth    = 18
)

// viridis anchors, sampled evenly from the matplotlib colormap.
var viridis = []color.RGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x3b, G: 0x52, B: 0x8b, A: 0xff},
	{R: 0x21, G: 0x91, B: 0x8c, A: 0xff},
	{R: 0x5e, G: 0xc9, B: 0x62, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// drawTemperatureChart writes a horizontal bar chart of Celsius temperature
// per city as PNG. The first table row is drawn at the top.
func drawTemperatureChart(t *Table, w io.Writer) error {
	if len(t.Rows) == 0 {
		return errors.New("no rows to plot")
	}

	p := plot.New()
	p.Title.Text = "Temperature by City"
	p.Y.Label.Text = "City"
	p.X.Label.Text = "Temperature (°C)"

	n := len(t.Rows)
	names := make([]string, n)
	for i, row := range t.Rows {
		// Y grows upward, so row 0 takes the highest position.
		pos := n - 1 - i
		names[pos] = row.City

		v := row.TemperatureC
		if math.IsNaN(v) {
			v = 0
		}
		bar, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(barWidth))
		if err != nil {
			return err
		}
		bar.Horizontal = true
		bar.XMin = float64(pos)
		bar.Color = paletteColor(i, n)
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.NominalY(names...)
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// paletteColor interpolates the viridis anchors for bar i of n.
func paletteColor(i, n int) color.Color {
	if n <= 1 {
		return viridis[0]
	}
	f := float64(i) / float64(n-1) * float64(len(viridis)-1)
	lo := int(math.Floor(f))
	if lo >= len(viridis)-1 {
		return viridis[len(viridis)-1]
	}
	frac := f - float64(lo)
	a, b := viridis[lo], viridis[lo+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
