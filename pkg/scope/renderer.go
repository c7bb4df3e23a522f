package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/kvmswitch/pkg/led"
)

var channelColors = [3]color.RGBA{
	{R: 255, G: 80, B: 80, A: 255},
	{R: 80, G: 255, B: 80, A: 255},
	{R: 100, G: 160, B: 255, A: 255},
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh redraws the trace.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	points := append([]Point(nil), r.scope.display...)
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	marginLeft := float32(40.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(30.0)

	plot := plotArea{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		xMin: xMin,
		span: xMax.Sub(xMin),
	}
	if plot.w <= 0 || plot.h <= 0 || plot.span <= 0 {
		return
	}

	r.drawGrid(plot)
	if len(points) > 1 {
		for ch := range channelColors {
			r.drawChannel(plot, points, ch)
		}
	}
	if len(points) > 0 {
		r.drawLegend(plot, points[len(points)-1].Color)
	}
}

type plotArea struct {
	x, y, w, h float32
	xMin       time.Time
	span       time.Duration
}

func (p plotArea) pos(at time.Time, v uint8) fyne.Position {
	x := p.x + float32(at.Sub(p.xMin).Seconds()/p.span.Seconds())*p.w
	y := p.y + p.h - float32(v)/255*p.h
	return fyne.NewPos(x, y)
}

// drawGrid draws the brightness and time grid.
func (r *scopeRenderer) drawGrid(p plotArea) {
	gridColor := color.RGBA{R: 40, G: 40, B: 40, A: 255}
	textColor := color.RGBA{R: 150, G: 150, B: 150, A: 255}

	numHLines := 5
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/float32(numHLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(p.x, y)
		line.Position2 = fyne.NewPos(p.x+p.w, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		value := 255 - i*255/numHLines
		text := canvas.NewText(fmt.Sprintf("%d", value), textColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, p.y)
		line.Position2 = fyne.NewPos(x, p.y+p.h)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := time.Duration(int64(p.span) * int64(i) / int64(numVLines))
		text := canvas.NewText(formatTime(offset-p.span), textColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.objects = append(r.objects, text)
	}
}

// drawChannel draws one color channel as a step line.
func (r *scopeRenderer) drawChannel(p plotArea, points []Point, ch int) {
	value := func(c led.RGB) uint8 {
		switch ch {
		case 0:
			return c.R
		case 1:
			return c.G
		default:
			return c.B
		}
	}

	for i := range len(points) - 1 {
		cur, next := points[i], points[i+1]
		if value(cur.Color) == 0 && value(next.Color) == 0 {
			continue
		}
		from := p.pos(cur.At, value(cur.Color))
		corner := p.pos(next.At, value(cur.Color))
		to := p.pos(next.At, value(next.Color))

		for _, seg := range [2][2]fyne.Position{{from, corner}, {corner, to}} {
			line := canvas.NewLine(channelColors[ch])
			line.Position1 = seg[0]
			line.Position2 = seg[1]
			line.StrokeWidth = 1.5
			r.objects = append(r.objects, line)
		}
	}
}

// drawLegend shows the current color.
func (r *scopeRenderer) drawLegend(p plotArea, c led.RGB) {
	swatch := canvas.NewRectangle(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	swatch.StrokeColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	swatch.StrokeWidth = 1
	swatch.Resize(fyne.NewSize(14, 14))
	swatch.Move(fyne.NewPos(p.x+10, p.y+5))
	r.objects = append(r.objects, swatch)

	text := canvas.NewText(fmt.Sprintf("R %3d  G %3d  B %3d", c.R, c.G, c.B), color.RGBA{R: 200, G: 200, B: 200, A: 255})
	text.TextSize = 11
	text.Move(fyne.NewPos(p.x+30, p.y+4))
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatTime(d time.Duration) string {
	if d > -time.Second && d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
