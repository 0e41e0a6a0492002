package notification

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

type stubChannel struct {
	name  string
	err   error
	block bool
	calls int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(ctx context.Context, recipient, message string) error {
	s.calls++
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.err
}

type memoryStore struct {
	records []Record
	err     error
}

func (m *memoryStore) Save(_ context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return m.err
}

func (m *memoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	return m.records, nil
}

func newTestDispatcher(store LogStore, fallback Channel, channels ...Channel) *Dispatcher {
	return NewDispatcher(Options{
		Recipient: "+919138136007",
		Template:  testTemplate,
		Timeout:   50 * time.Millisecond,
		Fallback:  fallback,
		Store:     store,
	}, channels...)
}

func TestNotify_FirstSuccessStops(t *testing.T) {
	first := &stubChannel{name: "twilio", err: errors.New("401")}
	second := &stubChannel{name: "webhook"}
	third := &stubChannel{name: "email"}
	fallback := &stubChannel{name: "log"}
	store := &memoryStore{}

	res := newTestDispatcher(store, fallback, first, second, third).Notify(context.Background(), sampleBooking())

	assert.True(t, res.Delivered)
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	assert.Equal(t, "webhook", res.Channel)
	assert.Equal(t, []Attempt{{Channel: "twilio", Error: "401"}, {Channel: "webhook", Success: true}}, res.Attempts)
	assert.Zero(t, third.calls)
	assert.Zero(t, fallback.calls)

	require.Len(t, store.records, 1)
	assert.Equal(t, uint(9), store.records[0].AppointmentID)
	assert.Equal(t, OutcomeDelivered, store.records[0].Outcome)
}

func TestNotify_Degraded(t *testing.T) {
	res := newTestDispatcher(nil, &stubChannel{name: "log"}, &stubChannel{name: "webhook", err: errors.New("down")}).
		Notify(context.Background(), sampleBooking())

	assert.False(t, res.Delivered)
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Equal(t, "log", res.Channel)
	assert.Len(t, res.Attempts, 2)
	assert.Equal(t, DeepLink("https://wa.me", "+919138136007", res.MessageText), res.DeepLinkURL)
}

func TestNotify_OnlyFallbackConfigured(t *testing.T) {
	res := newTestDispatcher(nil, &stubChannel{name: "log"}).Notify(context.Background(), sampleBooking())
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Len(t, res.Attempts, 1)
}

func TestNotify_Failed(t *testing.T) {
	res := newTestDispatcher(nil, &stubChannel{name: "log", err: errors.New("disk full")},
		&stubChannel{name: "callmebot", err: errors.New("timeout")}).
		Notify(context.Background(), sampleBooking())

	assert.False(t, res.Delivered)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Empty(t, res.Channel)
	assert.NotEmpty(t, res.DeepLinkURL)
	assert.NotEmpty(t, res.MessageText)
}

func TestNotify_TimeoutPerChannel(t *testing.T) {
	slow := &stubChannel{name: "twilio", block: true}
	fast := &stubChannel{name: "webhook"}

	start := time.Now()
	res := newTestDispatcher(nil, nil, slow, fast).Notify(context.Background(), sampleBooking())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, OutcomeDelivered, res.Outcome)
	assert.Equal(t, context.DeadlineExceeded.Error(), res.Attempts[0].Error)
}

func TestNotify_StoreErrorIsLoggedNotReturned(t *testing.T) {
	var buf syncBuffer
	logger := zerolog.New(&buf)
	store := &memoryStore{err: errors.New("insert failed")}

	d := NewDispatcher(Options{Recipient: "+91", Fallback: &stubChannel{name: "log"}, Store: store, Logger: &logger})
	res := d.Notify(context.Background(), sampleBooking())

	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Contains(t, buf.String(), "failed to persist notification log")
}

func TestNotify_CancelledRequestStillPersists(t *testing.T) {
	store := &memoryStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestDispatcher(store, &stubChannel{name: "log"}).Notify(ctx, sampleBooking())
	assert.Equal(t, OutcomeDegraded, res.Outcome)
	assert.Len(t, store.records, 1)
}

func TestDispatcher_Channels(t *testing.T) {
	d := newTestDispatcher(nil, &stubChannel{name: "log"}, &stubChannel{name: "twilio"}, &stubChannel{name: "email"})
	assert.Equal(t, []string{"twilio", "email", "log"}, d.Channels())
}
