package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jbakamovic/cxxd/internal/protocol"
)

type stubService struct {
	mu          sync.Mutex
	startupArgs []any
	requestFunc func(payload []any) (bool, any)
}

func (s *stubService) Startup(payload []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startupArgs = payload
}

func (s *stubService) Shutdown(payload []any) {}

func (s *stubService) Request(payload []any) (bool, any) {
	if s.requestFunc != nil {
		return s.requestFunc(payload)
	}
	return true, nil
}

func TestWorkerProcessesStartupRequestShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &stubService{requestFunc: func(payload []any) (bool, any) {
		return true, "ok"
	}}

	var results []bool
	var mu sync.Mutex
	w := New(svc, func(success bool, payload []any, result any) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, success)
	})
	w.Start()

	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagStartup, Payload: []any{"cfg"}})
	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagRequest, Payload: []any{"file.cpp"}})
	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagShutdown})
	w.Join()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 3)
	assert.True(t, results[0])
	assert.True(t, results[1])
	assert.True(t, results[2])
}

func TestWorkerRequestCanFail(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &stubService{requestFunc: func(payload []any) (bool, any) {
		return false, nil
	}}

	done := make(chan bool, 1)
	w := New(svc, func(success bool, payload []any, result any) {
		done <- success
	})
	w.Start()
	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagRequest})
	assert.False(t, <-done)

	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagShutdown})
	w.Join()
}

func TestWorkerIgnoresUnknownTag(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &stubService{}
	w := New(svc, nil)
	w.Start()

	w.Enqueue(protocol.ServiceMessage{Tag: protocol.MessageTag(99)})
	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagShutdown})
	w.Join()
}

func TestWorkerRecoversPanicAndExitsMarkedCrashed(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc := &stubService{requestFunc: func(payload []any) (bool, any) {
		panic("boom")
	}}
	w := New(svc, nil)
	w.Start()

	w.Enqueue(protocol.ServiceMessage{Tag: protocol.TagRequest})
	w.Join()

	assert.True(t, w.Crashed())
}
