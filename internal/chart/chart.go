// Package chart renders report datasets as PNG images.
package chart

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ignite/discount-generator/internal/report"
)

// ErrTooSmall is returned when the canvas cannot hold the plot area.
var ErrTooSmall = errors.New("chart: canvas too small")

// Options sizes the output image.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions matches the dashboard panel size.
var DefaultOptions = Options{Width: 800, Height: 480}

const (
	marginLeft   = 64
	marginRight  = 24
	marginTop    = 44
	marginBottom = 56
	yTicks       = 4
)

var (
	background = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	axisColor  = color.RGBA{0x33, 0x33, 0x33, 0xFF}
	gridColor  = color.RGBA{0xE6, 0xE6, 0xE6, 0xFF}
	textColor  = color.RGBA{0x22, 0x22, 0x22, 0xFF}

	palette = []color.RGBA{
		{0x1F, 0x77, 0xB4, 0xFF},
		{0xFF, 0x7F, 0x0E, 0xFF},
		{0x2C, 0xA0, 0x2C, 0xFF},
		{0xD6, 0x27, 0x28, 0xFF},
		{0x94, 0x67, 0xBD, 0xFF},
		{0x8C, 0x56, 0x4B, 0xFF},
	}
)

// canvas wraps the image with the plot-area geometry.
type canvas struct {
	img  *image.RGBA
	plot image.Rectangle
	face font.Face
}

func newCanvas(opts Options) (*canvas, error) {
	if opts.Width == 0 && opts.Height == 0 {
		opts = DefaultOptions
	}
	plot := image.Rect(marginLeft, marginTop, opts.Width-marginRight, opts.Height-marginBottom)
	if plot.Dx() < 40 || plot.Dy() < 40 {
		return nil, ErrTooSmall
	}
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	return &canvas{img: img, plot: plot, face: basicfont.Face7x13}, nil
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) hline(x0, x1, y int, col color.Color) { c.fill(image.Rect(x0, y, x1+1, y+1), col) }
func (c *canvas) vline(x, y0, y1 int, col color.Color) { c.fill(image.Rect(x, y0, x+1, y1+1), col) }

func (c *canvas) textWidth(s string) int {
	return font.MeasureString(c.face, s).Round()
}

// text draws s with its baseline at y; align is -1 left, 0 centered, 1 right of x.
func (c *canvas) text(s string, x, y, align int) {
	switch align {
	case 0:
		x -= c.textWidth(s) / 2
	case 1:
		x -= c.textWidth(s)
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(textColor),
		Face: c.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (c *canvas) frame(title, xLabel, yLabel string) {
	c.text(title, c.img.Bounds().Dx()/2, marginTop/2+4, 0)
	c.text(xLabel, c.plot.Min.X+c.plot.Dx()/2, c.img.Bounds().Dy()-12, 0)
	c.text(yLabel, 8, marginTop-10, -1)
	c.hline(c.plot.Min.X, c.plot.Max.X, c.plot.Max.Y, axisColor)
	c.vline(c.plot.Min.X, c.plot.Min.Y, c.plot.Max.Y, axisColor)
}

// yAxis draws gridlines and tick labels for [0, max] and returns the
// value-to-pixel mapping.
func (c *canvas) yAxis(max float64) func(float64) int {
	if max <= 0 {
		max = 1
	}
	max = niceCeil(max)
	scale := func(v float64) int {
		return c.plot.Max.Y - int(math.Round(v/max*float64(c.plot.Dy())))
	}
	for i := 0; i <= yTicks; i++ {
		v := max * float64(i) / yTicks
		y := scale(v)
		if i > 0 {
			c.hline(c.plot.Min.X+1, c.plot.Max.X, y, gridColor)
		}
		c.text(formatValue(v), c.plot.Min.X-6, y+4, 1)
	}
	return scale
}

func (c *canvas) encode(w io.Writer) error {
	return png.Encode(w, c.img)
}

// niceCeil rounds up to 1, 2, 2.5 or 5 times a power of ten.
func niceCeil(v float64) float64 {
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*exp >= v {
			return m * exp
		}
	}
	return 10 * exp
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Bar renders a bar chart of ds as PNG.
func Bar(w io.Writer, ds report.Dataset, opts Options) error {
	c, err := newCanvas(opts)
	if err != nil {
		return err
	}
	c.frame(ds.Title, ds.XLabel, ds.YLabel)

	if len(ds.Bars) == 0 {
		c.text("No data", c.plot.Min.X+c.plot.Dx()/2, c.plot.Min.Y+c.plot.Dy()/2, 0)
		return c.encode(w)
	}

	var max float64
	for _, b := range ds.Bars {
		max = math.Max(max, b.Value)
	}
	scale := c.yAxis(max)

	slot := float64(c.plot.Dx()) / float64(len(ds.Bars))
	barW := int(slot * 0.7)
	if barW < 1 {
		barW = 1
	}
	for i, b := range ds.Bars {
		cx := c.plot.Min.X + int(slot*(float64(i)+0.5))
		top := scale(b.Value)
		c.fill(image.Rect(cx-barW/2, top, cx+barW/2+1, c.plot.Max.Y), palette[i%len(palette)])
		c.text(formatValue(b.Value), cx, top-4, 0)
		label := b.Label
		if c.textWidth(label) > int(slot) && len(ds.Bars) > 6 {
			label = shorten(label)
		}
		c.text(label, cx, c.plot.Max.Y+16, 0)
	}
	return c.encode(w)
}

// Box renders one box-and-whisker per segment as PNG.
func Box(w io.Writer, title, yLabel string, boxes []report.BoxStats, opts Options) error {
	c, err := newCanvas(opts)
	if err != nil {
		return err
	}
	c.frame(title, "Segment", yLabel)

	if len(boxes) == 0 {
		c.text("No data", c.plot.Min.X+c.plot.Dx()/2, c.plot.Min.Y+c.plot.Dy()/2, 0)
		return c.encode(w)
	}

	var max float64
	for _, b := range boxes {
		max = math.Max(max, b.Max)
	}
	scale := c.yAxis(max)

	slot := float64(c.plot.Dx()) / float64(len(boxes))
	boxW := int(slot * 0.5)
	for i, b := range boxes {
		cx := c.plot.Min.X + int(slot*(float64(i)+0.5))
		col := palette[i%len(palette)]

		c.vline(cx, scale(b.Max), scale(b.Min), axisColor)
		c.hline(cx-boxW/4, cx+boxW/4, scale(b.Max), axisColor)
		c.hline(cx-boxW/4, cx+boxW/4, scale(b.Min), axisColor)

		q3, q1 := scale(b.Q3), scale(b.Q1)
		if q1-q3 < 2 {
			q3, q1 = q3-1, q1+1
		}
		c.fill(image.Rect(cx-boxW/2, q3, cx+boxW/2+1, q1+1), col)
		c.hline(cx-boxW/2, cx+boxW/2, scale(b.Median), axisColor)

		c.text(string(b.Segment), cx, c.plot.Max.Y+16, 0)
	}
	return c.encode(w)
}

// shorten keeps the lower bound of a range label like "20.0-21.2".
func shorten(label string) string {
	for i := 1; i < len(label); i++ {
		if label[i] == '-' {
			return label[:i]
		}
	}
	return label
}
