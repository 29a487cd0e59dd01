package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
)

var errHandlerFailed = errors.New("handler failed")

// fakeMsg implements jetstream.Msg and records acknowledgement calls.
type fakeMsg struct {
	data      []byte
	delivered uint64

	acked bool
	naked bool
}

func (m *fakeMsg) Metadata() (*jetstream.MsgMetadata, error) {
	return &jetstream.MsgMetadata{NumDelivered: m.delivered}, nil
}

func (m *fakeMsg) Data() []byte                     { return m.data }
func (m *fakeMsg) Headers() nats.Header             { return nil }
func (m *fakeMsg) Subject() string                  { return "lms.events.netdevices" }
func (m *fakeMsg) Reply() string                    { return "" }
func (m *fakeMsg) Ack() error                       { m.acked = true; return nil }
func (m *fakeMsg) DoubleAck(context.Context) error  { m.acked = true; return nil }
func (m *fakeMsg) Nak() error                       { m.naked = true; return nil }
func (m *fakeMsg) NakWithDelay(time.Duration) error { m.naked = true; return nil }
func (m *fakeMsg) InProgress() error                { return nil }
func (m *fakeMsg) Term() error                      { return nil }
func (m *fakeMsg) TermWithReason(string) error      { return nil }

type handlerFunc func(ctx context.Context, data []byte) error

func (f handlerFunc) Handle(ctx context.Context, data []byte) error {
	return f(ctx, data)
}

func newTestConsumer() *Consumer {
	return &Consumer{
		streamName:   "lms-events",
		consumerName: "zabbix-sync",
		logger:       logger.NewTestLogger(),
	}
}

func TestHandleMessageAcksOnSuccess(t *testing.T) {
	consumer := newTestConsumer()
	msg := &fakeMsg{data: []byte(`{"action":"INSERT"}`), delivered: 1}

	var got []byte

	consumer.handleMessage(context.Background(), msg, handlerFunc(func(_ context.Context, data []byte) error {
		got = data
		return nil
	}))

	assert.Equal(t, msg.data, got)
	assert.True(t, msg.acked)
	assert.False(t, msg.naked)
}

func TestHandleMessageNaksOnHandlerError(t *testing.T) {
	consumer := newTestConsumer()
	msg := &fakeMsg{delivered: 1}

	consumer.handleMessage(context.Background(), msg, handlerFunc(func(context.Context, []byte) error {
		return errHandlerFailed
	}))

	assert.False(t, msg.acked)
	assert.True(t, msg.naked, "a failed sync must request redelivery")
}

func TestHandleMessageGivesUpAfterMaxDeliveries(t *testing.T) {
	consumer := newTestConsumer()
	msg := &fakeMsg{delivered: maxDeliver}

	consumer.handleMessage(context.Background(), msg, handlerFunc(func(context.Context, []byte) error {
		return errHandlerFailed
	}))

	assert.True(t, msg.acked, "exhausted deliveries are acked so the stream keeps moving")
	assert.False(t, msg.naked)
}

func TestHandleMessageNaksBelowMaxDeliveries(t *testing.T) {
	consumer := newTestConsumer()
	msg := &fakeMsg{delivered: maxDeliver - 1}

	consumer.handleMessage(context.Background(), msg, handlerFunc(func(context.Context, []byte) error {
		return errHandlerFailed
	}))

	assert.True(t, msg.naked)
	assert.False(t, msg.acked)
}
