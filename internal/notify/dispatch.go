package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher is an in-process Center backed by plain timers. It stands
// in for the OS notification center when notat runs as a foreground
// watcher: alerts are logged at fire time. Delivered identifiers are
// retained so a later cancel removes them too.
type Dispatcher struct {
	mu        sync.Mutex
	timers    map[string]*time.Timer
	delivered map[string]Request
	log       *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		timers:    make(map[string]*time.Timer),
		delivered: make(map[string]Request),
		log:       log.With(zap.String("component", "notify.dispatch")),
	}
}

// RequestAuthorization always grants; there is no permission gate for an
// in-process dispatcher.
func (d *Dispatcher) RequestAuthorization(ctx context.Context) (bool, error) {
	return true, nil
}

func (d *Dispatcher) Schedule(ctx context.Context, req Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.timers[req.ID]; ok {
		old.Stop()
	}
	d.timers[req.ID] = time.AfterFunc(time.Until(req.FireAt), func() { d.deliver(req) })
	return nil
}

func (d *Dispatcher) deliver(req Request) {
	d.mu.Lock()
	delete(d.timers, req.ID)
	d.delivered[req.ID] = req
	d.mu.Unlock()
	d.log.Info("reminder",
		zap.String("alert_id", req.ID),
		zap.String("title", req.Title),
		zap.String("body", req.Body))
}

func (d *Dispatcher) Cancel(ctx context.Context, ids ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		if timer, ok := d.timers[id]; ok {
			timer.Stop()
			delete(d.timers, id)
		}
		delete(d.delivered, id)
	}
	return nil
}

// Pending returns the identifiers of alerts not yet delivered.
func (d *Dispatcher) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.timers))
	for id := range d.timers {
		out = append(out, id)
	}
	return out
}

// Close stops all pending timers.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, timer := range d.timers {
		timer.Stop()
		delete(d.timers, id)
	}
}

var _ Center = (*Dispatcher)(nil)
