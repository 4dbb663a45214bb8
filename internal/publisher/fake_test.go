package publisher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var errFakeReconnect = errors.New("fake: broker unreachable")

// sentMessage is one call to fakeTransport.Publish.
type sentMessage struct {
	topic   string
	payload string
	qos     byte
}

// fakeTransport is a scripted Transport. Unless configured otherwise every
// Reconnect fails with errFakeReconnect.
type fakeTransport struct {
	mu      sync.Mutex
	handler EventHandler

	connectErr     error
	connectEmits   bool // Connect delivers EventConnected asynchronously
	publishErr     error
	reconnectFn    func(ctx context.Context, call int) error
	disconnectErr  error
	disconnectEmit *Event // delivered from Disconnect when set

	sent []sentMessage

	connectCalls    atomic.Int32
	reconnectCalls  atomic.Int32
	disconnectCalls atomic.Int32
	closeCalls      atomic.Int32
	inFlight        atomic.Int32
	maxInFlight     atomic.Int32
}

func (f *fakeTransport) SetEventHandler(h EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

func (f *fakeTransport) emit(ev Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(ev)
	}
}

func (f *fakeTransport) Connect(_ context.Context) error {
	f.connectCalls.Add(1)
	if f.connectErr != nil {
		return f.connectErr
	}
	if f.connectEmits {
		go f.emit(Event{Type: EventConnected})
	}
	return nil
}

func (f *fakeTransport) Reconnect(ctx context.Context) error {
	call := int(f.reconnectCalls.Add(1))

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if n <= prev || f.maxInFlight.CompareAndSwap(prev, n) {
			break
		}
	}

	if f.reconnectFn != nil {
		return f.reconnectFn(ctx, call)
	}
	return errFakeReconnect
}

func (f *fakeTransport) Publish(_ context.Context, topic string, payload []byte, qos byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, sentMessage{topic: topic, payload: string(payload), qos: qos})
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.disconnectCalls.Add(1)
	if f.disconnectEmit != nil {
		f.emit(*f.disconnectEmit)
	}
	return f.disconnectErr
}

func (f *fakeTransport) Close() {
	f.closeCalls.Add(1)
}

func (f *fakeTransport) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// instantAfter fires immediately regardless of the requested delay.
func instantAfter(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}
