package scope

import (
	"sync"
	"time"

	"github.com/itohio/kvmswitch/pkg/led"
	"github.com/itohio/kvmswitch/pkg/pixel"
)

// Point is one emitted pixel color.
type Point struct {
	At    time.Time
	Color led.RGB
}

// Trace is a bounded history of emitted pixel colors. It implements
// pixel.Emitter so it can be chained behind the real pixel.
type Trace struct {
	mu     sync.Mutex
	points []Point
	start  int
	size   int
	now    func() time.Time
	next   pixel.Emitter
}

// Ensure Trace implements pixel.Emitter.
var _ pixel.Emitter = (*Trace)(nil)

// NewTrace creates a Trace keeping the last size points. Frames are
// forwarded to next when it is not nil.
func NewTrace(size int, next pixel.Emitter) *Trace {
	if size <= 0 {
		size = 1
	}
	return &Trace{
		points: make([]Point, 0, size),
		size:   size,
		now:    time.Now,
		next:   next,
	}
}

// Emit implements pixel.Emitter.
func (t *Trace) Emit(f *pixel.Frame) error {
	r, g, b, err := pixel.Decode(f)
	if err != nil {
		return err
	}
	t.Add(t.now(), led.RGB{R: r, G: g, B: b})

	if t.next != nil {
		return t.next.Emit(f)
	}
	return nil
}

// Add appends a point, dropping the oldest one when full.
func (t *Trace) Add(at time.Time, c led.RGB) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := Point{At: at, Color: c}
	if len(t.points) < t.size {
		t.points = append(t.points, p)
		return
	}
	t.points[t.start] = p
	t.start = (t.start + 1) % t.size
}

// Points appends the points in emission order to dst.
func (t *Trace) Points(dst []Point) []Point {
	t.mu.Lock()
	defer t.mu.Unlock()

	dst = dst[:0]
	dst = append(dst, t.points[t.start:]...)
	return append(dst, t.points[:t.start]...)
}

// Last returns the most recent point.
func (t *Trace) Last() (Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.points) == 0 {
		return Point{}, false
	}
	i := t.start - 1
	if i < 0 {
		i = len(t.points) - 1
	}
	return t.points[i], true
}

// Downsample reduces src to at most max points by keeping evenly spaced
// points. The last point is always kept. dst is reused.
func Downsample(dst, src []Point, max int) []Point {
	dst = dst[:0]
	if max <= 0 || len(src) <= max {
		return append(dst, src...)
	}

	step := float64(len(src)-1) / float64(max-1)
	for i := 0; i < max-1; i++ {
		dst = append(dst, src[int(float64(i)*step)])
	}
	return append(dst, src[len(src)-1])
}
