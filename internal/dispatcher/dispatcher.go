// Package dispatcher implements the Server Dispatcher (spec.md §4.7):
// the single entry point that owns the four registered services by fixed
// numeric id and routes every action onto the matching Service Worker.
package dispatcher

import (
	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/protocol"
	"github.com/jbakamovic/cxxd/internal/worker"
)

type registration struct {
	factory func() worker.Service
	w       *worker.Worker
	started bool
}

// Dispatcher owns the registered services and serializes every action
// through its own goroutine, reading from a single input channel
// (spec §5 "Ordering": "Messages on a single queue are processed strictly
// in arrival order").
type Dispatcher struct {
	services   map[protocol.ServiceID]*registration
	onComplete worker.CompletionCallback
	queue      chan protocol.DispatchMessage
	done       chan struct{}
}

// New constructs a Dispatcher. onComplete is forwarded to every worker it
// spawns as that worker's completion callback.
func New(onComplete worker.CompletionCallback) *Dispatcher {
	return &Dispatcher{
		services:   make(map[protocol.ServiceID]*registration),
		onComplete: onComplete,
		queue:      make(chan protocol.DispatchMessage, 64),
		done:       make(chan struct{}),
	}
}

// Register binds id to a factory that produces a fresh Service instance
// each time the service is (re-)started (spec §4.7 "four registered
// services by fixed numeric id").
func (d *Dispatcher) Register(id protocol.ServiceID, factory func() worker.Service) {
	d.services[id] = &registration{factory: factory}
}

// Enqueue submits msg to the dispatcher's input queue.
func (d *Dispatcher) Enqueue(msg protocol.DispatchMessage) {
	d.queue <- msg
}

// Start spawns the dispatcher's own message loop goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

// Join blocks until the dispatcher has processed a SHUTDOWN_AND_EXIT
// action and stopped its loop.
func (d *Dispatcher) Join() {
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		switch msg.Action {
		case protocol.ActionStartAll:
			for id := range d.services {
				d.startOne(id, msg.Payload)
			}
		case protocol.ActionShutdownAll:
			for id := range d.services {
				d.shutdownOne(id, msg.Payload)
			}
		case protocol.ActionStartOne:
			d.startOne(msg.Service, msg.Payload)
		case protocol.ActionShutdownOne:
			d.shutdownOne(msg.Service, msg.Payload)
		case protocol.ActionSendOne:
			d.sendOne(msg.Service, msg.Payload)
		case protocol.ActionShutdownAndExit:
			for id := range d.services {
				d.shutdownOne(id, msg.Payload)
			}
			return
		default:
			logging.Warn("dispatcher: unknown action %#x, ignoring", msg.Action)
		}
	}
}

func (d *Dispatcher) startOne(id protocol.ServiceID, payload []any) {
	rs, ok := d.services[id]
	if !ok {
		logging.Warn("dispatcher: unknown service id %d", id)
		return
	}
	if rs.started && rs.w != nil && rs.w.Crashed() {
		// The dispatcher notices the dead worker here, on the next start
		// attempt (spec §7 "Fatal").
		rs.started = false
	}
	if rs.started {
		logging.Warn("dispatcher: service %s already started", id)
		return
	}
	rs.w = worker.New(rs.factory(), d.onComplete)
	rs.w.Start()
	rs.started = true
	rs.w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagStartup, Payload: payload})
}

func (d *Dispatcher) shutdownOne(id protocol.ServiceID, payload []any) {
	rs, ok := d.services[id]
	if !ok {
		logging.Warn("dispatcher: unknown service id %d", id)
		return
	}
	if !rs.started {
		logging.Warn("dispatcher: service %s not started", id)
		return
	}
	rs.w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagShutdown, Payload: payload})
	rs.w.Join()
	rs.started = false
}

func (d *Dispatcher) sendOne(id protocol.ServiceID, payload []any) {
	rs, ok := d.services[id]
	if !ok || !rs.started {
		logging.Warn("dispatcher: send to unstarted or unknown service %d", id)
		return
	}
	rs.w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagRequest, Payload: payload})
}
