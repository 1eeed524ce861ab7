package plugin

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/cursor"
)

// DefaultQueueSize is the number of pending requests a Dispatcher buffers.
const DefaultQueueSize = 32

// Runner executes one plugin request.
type Runner interface {
	Execute(ctx context.Context, plugin *Plugin, req *Request) (*Response, error)
}

// Dispatcher is a cursor.Host that forwards effects to a desktop input
// plugin. Calls never block: requests go through a bounded queue drained by a
// single worker, and are dropped when the queue is full.
type Dispatcher struct {
	runner Runner
	plugin *Plugin
	queue  chan *Request

	dropped atomic.Int64
	failed  atomic.Int64

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

var _ cursor.Host = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher for plugin. A non-positive queueSize
// means DefaultQueueSize.
func NewDispatcher(runner Runner, plugin *Plugin, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		runner: runner,
		plugin: plugin,
		queue:  make(chan *Request, queueSize),
	}
}

// Start launches the worker. It exits when ctx is cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.run(ctx)
}

// Stop closes the queue and waits for queued requests to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Dropped returns how many requests were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Failed returns how many requests the plugin rejected or failed to run.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-d.queue:
			if !ok {
				return
			}
			d.execute(ctx, req)
		}
	}
}

func (d *Dispatcher) execute(ctx context.Context, req *Request) {
	resp, err := d.runner.Execute(ctx, d.plugin, req)
	switch {
	case err != nil:
		d.failed.Add(1)
		slog.Warn("pointer plugin failed", "plugin", d.plugin.Manifest.Name, "action", req.Action, "error", err)
	case !resp.Success:
		d.failed.Add(1)
		slog.Warn("pointer plugin rejected request", "plugin", d.plugin.Manifest.Name, "action", req.Action, "error", resp.Error)
	}
}

func (d *Dispatcher) enqueue(action string, params any) {
	if !d.plugin.Manifest.Supports(action) {
		return
	}

	req := &Request{Action: action}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			slog.Error("failed to encode plugin params", "action", action, "error", err)
			return
		}
		req.Params = raw
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}

	select {
	case d.queue <- req:
	default:
		d.dropped.Add(1)
		slog.Debug("pointer plugin queue full, dropping request", "action", action)
	}
}

// Show is forwarded only when the plugin declares it.
func (d *Dispatcher) Show() { d.enqueue(ActionShow, nil) }

// Hide is forwarded only when the plugin declares it.
func (d *Dispatcher) Hide() { d.enqueue(ActionHide, nil) }

func (d *Dispatcher) MoveTo(x, y float64) {
	d.enqueue(ActionMove, PointParams{X: x, Y: y})
}

func (d *Dispatcher) ClickAt(x, y float64) {
	d.enqueue(ActionClick, PointParams{X: x, Y: y})
}

func (d *Dispatcher) ScrollBy(delta int, behavior cursor.ScrollBehavior) {
	d.enqueue(ActionScroll, ScrollParams{Delta: delta, Behavior: string(behavior)})
}
