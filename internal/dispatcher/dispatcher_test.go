package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/jbakamovic/cxxd/internal/protocol"
	"github.com/jbakamovic/cxxd/internal/worker"
)

type fakeService struct {
	mu      sync.Mutex
	started bool
}

func (f *fakeService) Startup(payload []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
}

func (f *fakeService) Shutdown(payload []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
}

func (f *fakeService) Request(payload []any) (bool, any) {
	return true, "handled"
}

func newTestDispatcher(results *[]bool, mu *sync.Mutex) *Dispatcher {
	d := New(func(success bool, payload []any, result any) {
		mu.Lock()
		defer mu.Unlock()
		*results = append(*results, success)
	})
	d.Register(protocol.ServiceCodeModel, func() worker.Service { return &fakeService{} })
	d.Register(protocol.ServiceBuild, func() worker.Service { return &fakeService{} })
	d.Start()
	return d
}

func TestDispatcherStartAndShutdownOne(t *testing.T) {
	defer goleak.VerifyNone(t)

	var results []bool
	var mu sync.Mutex
	d := newTestDispatcher(&results, &mu)

	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartOne, Service: protocol.ServiceCodeModel})
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionSendOne, Service: protocol.ServiceCodeModel})
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAndExit})
	d.Join()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, results, 3) // startup, request, shutdown
}

func TestDispatcherDoubleStartIsIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	var results []bool
	var mu sync.Mutex
	d := newTestDispatcher(&results, &mu)

	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartOne, Service: protocol.ServiceCodeModel})
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartOne, Service: protocol.ServiceCodeModel})
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAndExit})
	d.Join()

	mu.Lock()
	defer mu.Unlock()
	// second start is a warning-and-return, no completion callback fires for it
	assert.Len(t, results, 2) // first startup, then shutdown
}

func TestDispatcherUnknownActionIsIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	var results []bool
	var mu sync.Mutex
	d := newTestDispatcher(&results, &mu)

	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionID(0x42)})
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAndExit})
	d.Join()

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, results)
}

func TestDispatcherStartAllFansOutToEveryService(t *testing.T) {
	defer goleak.VerifyNone(t)

	var results []bool
	var mu sync.Mutex
	d := newTestDispatcher(&results, &mu)

	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionStartAll})
	time.Sleep(10 * time.Millisecond)
	d.Enqueue(protocol.DispatchMessage{Action: protocol.ActionShutdownAndExit})
	d.Join()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, results, 4) // 2 services x (startup + shutdown)
}
