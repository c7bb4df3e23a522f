// Package relay pumps bytes between the lower device and the active upper
// target and recognizes the mouse-middle control frames in the lower stream.
package relay

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/kvmswitch/pkg/clock"
	"github.com/itohio/kvmswitch/pkg/config"
	"github.com/itohio/kvmswitch/pkg/state"
)

// Channels groups the lower channel with both upper channels.
type Channels struct {
	Lower  Channel
	UpperA Channel
	UpperB Channel
}

// Upper returns the channel of target t.
func (c Channels) Upper(t state.Target) Channel {
	if t == state.TargetB {
		return c.UpperB
	}
	return c.UpperA
}

// Router tells the relay where to send and whether to filter.
// *state.State implements it.
type Router interface {
	Target() state.Target
	MouseMiddleEnabled() bool
}

// Requester receives one switch request per consumed middle-click frame.
// RequestSwitch must not block.
type Requester interface {
	RequestSwitch() bool
}

// Stats holds the relay counters.
type Stats struct {
	Down      uint64 // Bytes forwarded lower to upper
	Up        uint64 // Bytes forwarded upper to lower
	Frames    uint64 // Middle-click frames consumed
	Requests  uint64 // Switch requests accepted by the requester
	Overflows uint64 // Flush-and-continue recoveries
	Errors    uint64 // Other read and write failures
}

// Relay is the byte pump. Step is not safe for concurrent use; run exactly
// one Run loop per Relay.
type Relay struct {
	ch     Channels
	router Router
	req    Requester
	clk    clock.Clock
	sleep  time.Duration

	rbuf []byte
	fbuf []byte

	down      atomic.Uint64
	up        atomic.Uint64
	frames    atomic.Uint64
	requests  atomic.Uint64
	overflows atomic.Uint64
	errs      atomic.Uint64
}

// New creates a Relay. A nil cfg or clk selects the defaults.
func New(ch Channels, router Router, req Requester, cfg *config.Config, clk clock.Clock) *Relay {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.Real()
	}
	size := cfg.Serial.BufferSize
	if size <= 0 {
		size = config.Default().Serial.BufferSize
	}

	return &Relay{
		ch:     ch,
		router: router,
		req:    req,
		clk:    clk,
		sleep:  cfg.Relay.Sleep,
		rbuf:   make([]byte, size),
		fbuf:   make([]byte, 0, size),
	}
}

// Run steps the relay until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r.Step()
		r.clk.Sleep(r.sleep)
	}
}

// Step performs one relay iteration in both directions. The target is read
// once, so bytes read in a step that overlaps a switch still reach the
// previous target.
func (r *Relay) Step() {
	target := r.router.Target()
	upper := r.ch.Upper(target)

	if n, ok := r.read("lower", r.ch.Lower); ok {
		out, middles := Filter(r.fbuf[:0], r.rbuf[:n], r.router.MouseMiddleEnabled())
		r.fbuf = out[:0]
		if len(out) > 0 {
			r.write(upper, out, &r.down)
		}
		for i := 0; i < middles; i++ {
			r.frames.Add(1)
			if r.req != nil && r.req.RequestSwitch() {
				r.requests.Add(1)
			}
		}
	}

	if n, ok := r.read("upper "+target.String(), upper); ok {
		r.write(r.ch.Lower, r.rbuf[:n], &r.up)
	}
}

// Stats returns a snapshot of the counters.
func (r *Relay) Stats() Stats {
	return Stats{
		Down:      r.down.Load(),
		Up:        r.up.Load(),
		Frames:    r.frames.Load(),
		Requests:  r.requests.Load(),
		Overflows: r.overflows.Load(),
		Errors:    r.errs.Load(),
	}
}

// read drains ch into rbuf. Overflow is recovered by flushing ch.
func (r *Relay) read(name string, ch Channel) (int, bool) {
	n, err := ch.Read(r.rbuf)
	if err != nil {
		if errors.Is(err, ErrOverflow) || errors.Is(err, ErrBufferFull) {
			r.overflows.Add(1)
			if ferr := ch.Flush(); ferr != nil {
				log.Printf("Error flushing %s channel: %v", name, ferr)
			}
			log.Printf("Flushed %s channel: %v", name, err)
		} else {
			r.errs.Add(1)
		}
		return 0, false
	}
	return n, n > 0
}

func (r *Relay) write(ch Channel, p []byte, counter *atomic.Uint64) {
	n, err := ch.Write(p)
	counter.Add(uint64(n))
	if err != nil {
		r.errs.Add(1)
	}
}
