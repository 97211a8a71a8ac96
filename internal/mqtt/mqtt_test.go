package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/soil-monitor/internal/events"
)

var ts = time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC)

func TestTopics(t *testing.T) {
	def := Topics{}
	assert.Equal(t, "garden/soil-monitor/events/state", def.Event(events.NameState))
	assert.Equal(t, "garden/soil-monitor/report", def.Report())
	assert.Equal(t, "garden/soil-monitor/system", def.System())

	custom := Topics{Prefix: "home/bed1"}
	assert.Equal(t, "home/bed1/events/threshold", custom.Event(events.NameThreshold))
}

func TestFormatPayloadExactJSON(t *testing.T) {
	data, err := FormatPayload(ts, events.NameState, "wet")
	require.NoError(t, err)
	assert.JSONEq(t, `{"soil":{"timestamp":"2026-02-02T22:18:12Z","event":"state","data":"wet"}}`, string(data))
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	data, err := FormatPayload(time.Date(2026, 2, 3, 0, 18, 12, 0, loc), events.NameThreshold, "62")
	require.NoError(t, err)

	var p Payload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "2026-02-02T22:18:12Z", p.Soil.Timestamp)
	assert.Equal(t, "62", p.Soil.Data)
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	data, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "SHUTDOWN", Reason: "SIGTERM"})
	require.NoError(t, err)
	assert.Equal(t, `{"system":{"timestamp":"2026-02-02T22:18:12Z","event":"SHUTDOWN","reason":"SIGTERM"}}`, string(data))
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	data, err := FormatSystemPayload(SystemEvent{Timestamp: ts, Event: "RECONNECTED"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "reason")
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"event":"STARTUP"}}`)
	data, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	f.Now = func() time.Time { return ts }

	f.Emit(events.NameState, "dry")
	f.Report(events.Report{Moisture: 10, State: "dry", Threshold: 50, RollingAverage: 12})
	require.NoError(t, f.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP", Retained: true}))

	assert.Equal(t, []events.Emitted{{Name: events.NameState, Payload: "dry"}}, f.Events)
	require.Len(t, f.Payloads, 1)
	assert.Contains(t, string(f.Payloads[0]), `"data":"dry"`)
	assert.Len(t, f.Reports, 1)
	require.Len(t, f.SystemEvents, 1)
	assert.True(t, f.SystemEvents[0].Retained)
	assert.Len(t, f.SystemPayloads, 1)
}

func TestFakePublisherSystemError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("broker gone")

	assert.Error(t, f.PublishSystem(SystemEvent{Event: "HEARTBEAT"}))
	assert.Empty(t, f.SystemEvents)
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Emit(events.NameState, "wet")
	f.Connected = true
	_ = f.Close()

	f.Reset()
	assert.Empty(t, f.Events)
	assert.Empty(t, f.Payloads)
	assert.False(t, f.Closed)
	assert.False(t, f.IsConnected())
}

// --- RealPublisher with a scripted paho client ---

type doneToken struct {
	err error
}

func (t doneToken) Wait() bool { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient implements the parts of paho.Client the publisher uses.
type fakeClient struct {
	paho.Client
	connected    bool
	published    []published
	publishErr   error
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.published = append(c.published, published{topic, qos, retained, payload.([]byte)})
	return doneToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func newTestPublisher(connected bool) (*RealPublisher, *fakeClient) {
	c := &fakeClient{connected: connected}
	return newPublisher(c, Topics{}, 3, func() time.Time { return ts }), c
}

func TestRealPublisherEmitWhileConnected(t *testing.T) {
	p, c := newTestPublisher(true)

	p.Emit(events.NameState, "wet")
	p.Report(events.Report{Moisture: 61, State: "wet", Threshold: 50, RollingAverage: 58})

	require.Len(t, c.published, 2)
	assert.Equal(t, "garden/soil-monitor/events/state", c.published[0].topic)
	assert.Equal(t, byte(0), c.published[0].qos)
	assert.JSONEq(t, `{"soil":{"timestamp":"2026-02-02T22:18:12Z","event":"state","data":"wet"}}`, string(c.published[0].payload))
	assert.Equal(t, "garden/soil-monitor/report", c.published[1].topic)
	assert.JSONEq(t, `{"moisture":61,"state":"wet","threshold":50,"rolling_average":58}`, string(c.published[1].payload))
}

func TestRealPublisherSystemUsesQoS1AndRetained(t *testing.T) {
	p, c := newTestPublisher(true)

	require.NoError(t, p.PublishSystem(SystemEvent{Timestamp: ts, Event: "STARTUP", Retained: true}))
	require.Len(t, c.published, 1)
	assert.Equal(t, "garden/soil-monitor/system", c.published[0].topic)
	assert.Equal(t, byte(1), c.published[0].qos)
	assert.True(t, c.published[0].retained)
}

func TestRealPublisherSystemError(t *testing.T) {
	p, c := newTestPublisher(true)
	c.publishErr = errors.New("not authorized")

	err := p.PublishSystem(SystemEvent{Timestamp: ts, Event: "HEARTBEAT"})
	require.Error(t, err)
	assert.ErrorIs(t, err, c.publishErr)
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	p, c := newTestPublisher(false)

	p.Emit(events.NameState, "dry")
	p.Emit(events.NameThreshold, "62")
	assert.Empty(t, c.published)
	assert.Equal(t, 2, p.buf.len())

	c.connected = true
	p.onConnect()

	require.Len(t, c.published, 2, "first connect replays without RECONNECTED")
	assert.Equal(t, "garden/soil-monitor/events/state", c.published[0].topic)
	assert.Equal(t, "garden/soil-monitor/events/threshold", c.published[1].topic)
	assert.Zero(t, p.buf.len())
}

func TestRealPublisherReconnectAnnouncesAndReplays(t *testing.T) {
	p, c := newTestPublisher(true)
	p.onConnect()

	c.connected = false
	for i := 0; i < 5; i++ {
		p.Emit(events.NameState, "wet")
	}
	c.connected = true
	p.onConnect()

	require.Len(t, c.published, 4, "RECONNECTED plus the newest 3 buffered messages")
	assert.Equal(t, "garden/soil-monitor/system", c.published[0].topic)
	assert.Contains(t, string(c.published[0].payload), "RECONNECTED")
	for _, m := range c.published[1:] {
		assert.Equal(t, "garden/soil-monitor/events/state", m.topic)
	}
}

func TestRealPublisherClose(t *testing.T) {
	p, c := newTestPublisher(true)
	require.NoError(t, p.Close())
	assert.True(t, c.disconnected)
	assert.True(t, p.IsConnected())
}

var (
	_ Publisher        = (*RealPublisher)(nil)
	_ Publisher        = (*FakePublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
