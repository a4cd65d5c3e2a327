// Package worker implements the Service Worker (spec.md §4.6) as a
// goroutine with its own buffered input channel, standing in for the
// original's one-process-per-service model (SPEC_FULL.md CONCURRENCY
// MAPPING: state stays private to the owning goroutine and every
// cross-worker interaction is still a channel message or a file on disk).
package worker

import (
	"sync/atomic"

	"github.com/jbakamovic/cxxd/internal/logging"
	"github.com/jbakamovic/cxxd/internal/protocol"
)

// Service is what a Service Worker loop drives: a startup/shutdown/request
// triple over opaque payloads (spec §4.6).
type Service interface {
	Startup(payload []any)
	Shutdown(payload []any)
	Request(payload []any) (bool, any)
}

// CompletionCallback is invoked once per processed message with the
// request's own success flag, its original payload, and its result
// (spec §4.6: "invokes the user-supplied completion callback with
// (success, payload, result_or_nil)"). Startup/shutdown callbacks always
// see success=true.
type CompletionCallback func(success bool, payload []any, result any)

// Worker runs one service's message loop on its own goroutine.
type Worker struct {
	service    Service
	onComplete CompletionCallback
	queue      chan protocol.ServiceMessage
	done       chan struct{}
	crashed    atomic.Bool
}

// New constructs a Worker around service. Call Start to begin processing.
func New(service Service, onComplete CompletionCallback) *Worker {
	return &Worker{
		service:    service,
		onComplete: onComplete,
		queue:      make(chan protocol.ServiceMessage, 64),
		done:       make(chan struct{}),
	}
}

// Enqueue submits msg to the worker's input queue. It must not be called
// after the worker has processed a SHUTDOWN message.
func (w *Worker) Enqueue(msg protocol.ServiceMessage) {
	w.queue <- msg
}

// Start spawns the worker's message loop goroutine (spec §4.6).
func (w *Worker) Start() {
	go w.run()
}

// Join blocks until the worker's loop has exited, mirroring the original's
// process join() (spec §4.7 "SHUTDOWN_ONE enqueues SHUTDOWN and joins the
// worker").
func (w *Worker) Join() {
	<-w.done
}

// Crashed reports whether the worker's loop exited because of a recovered
// panic rather than an ordinary SHUTDOWN (spec §7 "Fatal": "the worker
// exits; the dispatcher notices the dead worker on next start").
func (w *Worker) Crashed() bool {
	return w.crashed.Load()
}

func (w *Worker) run() {
	defer close(w.done)
	for msg := range w.queue {
		exit, shutdown := w.dispatch(msg)
		if exit {
			if !shutdown {
				w.crashed.Store(true)
			}
			return
		}
	}
}

// dispatch processes one message, recovering any panic that escapes the
// service handler so it becomes a Fatal log line and a clean worker exit
// instead of crashing the whole daemon (spec §7 "Fatal"; SPEC_FULL.md
// CONCURRENCY MAPPING's per-worker top-level result-handling layer).
func (w *Worker) dispatch(msg protocol.ServiceMessage) (exit, shutdown bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.Fatal("worker: recovered panic handling tag %d: %v", msg.Tag, r)
			exit = true
		}
	}()

	switch msg.Tag {
	case protocol.TagStartup:
		w.service.Startup(msg.Payload)
		w.complete(true, msg.Payload, nil)
	case protocol.TagShutdown:
		w.service.Shutdown(msg.Payload)
		w.complete(true, msg.Payload, nil)
		return true, true
	case protocol.TagRequest:
		success, result := w.service.Request(msg.Payload)
		w.complete(success, msg.Payload, result)
	default:
		logging.Warn("worker: unknown message tag %d, ignoring", msg.Tag)
	}
	return false, false
}

func (w *Worker) complete(success bool, payload []any, result any) {
	if w.onComplete != nil {
		w.onComplete(success, payload, result)
	}
}
