// Package scope provides a Fyne widget plotting the recent history of the
// status pixel, one line per color channel.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// ScopeWidget is a custom Fyne widget that displays the pixel trace.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu      sync.RWMutex
	display []Point
	xMin    time.Time
	xMax    time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget showing at least window of history.
func New(window time.Duration) *ScopeWidget {
	if window <= 0 {
		window = 10 * time.Second
	}
	s := &ScopeWidget{
		window:           window,
		display:          make([]Point, 0, 1000),
		maxDisplayPoints: 1000, // Limit points for efficient rendering
	}
	s.updateRange()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData replaces the plotted points.
// This should be called from the UI goroutine using fyne.Do().
func (s *ScopeWidget) UpdateData(points []Point) {
	s.mu.Lock()
	s.display = Downsample(s.display, points, s.maxDisplayPoints)
	s.updateRange()
	s.mu.Unlock()

	s.Refresh()
}

// updateRange calculates the time axis from the displayed points.
func (s *ScopeWidget) updateRange() {
	if len(s.display) == 0 {
		s.xMax = time.Now()
		s.xMin = s.xMax.Add(-s.window)
		return
	}

	s.xMax = s.display[len(s.display)-1].At
	s.xMin = s.display[0].At
	if s.xMax.Sub(s.xMin) < s.window {
		s.xMin = s.xMax.Add(-s.window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
