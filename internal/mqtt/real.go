package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sweeney/soil-monitor/internal/events"
)

// DefaultBufferSize is the number of messages held while disconnected.
const DefaultBufferSize = 64

const publishTimeout = 5 * time.Second

// Options configures a RealPublisher.
type Options struct {
	Broker      string
	ClientID    string // empty derives "soil-monitor-<random>"
	TopicPrefix string
	BufferSize  int
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client
	topics Topics
	now    func() time.Time

	mu            sync.Mutex
	buf           *ringBuffer
	everConnected bool
}

// NewRealPublisher creates a publisher for the given broker. If the broker
// is not reachable within the connect timeout the publisher is still
// returned; paho keeps retrying in the background and messages buffer.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.ClientID == "" {
		opts.ClientID = "soil-monitor-" + uuid.NewString()[:8]
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}

	p := newPublisher(nil, Topics{Prefix: opts.TopicPrefix}, opts.BufferSize, time.Now)

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(p.topics.System(), string(will), 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(clientOpts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, buffering until connected", opts.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func newPublisher(client paho.Client, topics Topics, bufferSize int, now func() time.Time) *RealPublisher {
	return &RealPublisher{
		client: client,
		topics: topics,
		now:    now,
		buf:    newRingBuffer(bufferSize),
	}
}

// Emit publishes a pipeline event (QoS 0, not retained).
func (p *RealPublisher) Emit(name, payload string) {
	data, err := FormatPayload(p.now(), name, payload)
	if err != nil {
		log.Printf("mqtt: format payload: %v", err)
		return
	}
	if err := p.publish(bufferedMsg{topic: p.topics.Event(name), payload: data}); err != nil {
		log.Printf("mqtt: publish %s: %v", name, err)
	}
}

// Report publishes a structured report (QoS 0, not retained).
func (p *RealPublisher) Report(r events.Report) {
	data, err := events.FormatReport(r)
	if err != nil {
		log.Printf("mqtt: format report: %v", err)
		return
	}
	if err := p.publish(bufferedMsg{topic: p.topics.Report(), payload: data}); err != nil {
		log.Printf("mqtt: publish report: %v", err)
	}
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	if err := p.publish(bufferedMsg{topic: p.topics.System(), payload: payload, qos: 1, retained: event.Retained}); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the client currently holds a connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	if !p.client.IsConnected() {
		p.mu.Lock()
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	return p.send(msg)
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}

// onConnect replays buffered messages and announces reconnection.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	pending := p.buf.drainAll()
	reconnect := p.everConnected
	p.everConnected = true
	p.mu.Unlock()

	if reconnect {
		log.Printf("mqtt: reconnected")
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err := p.send(bufferedMsg{topic: p.topics.System(), payload: payload, qos: 1}); err != nil {
			log.Printf("mqtt: publish reconnected: %v", err)
		}
	}

	if len(pending) > 0 {
		log.Printf("mqtt: replaying %d buffered messages", len(pending))
	}
	for _, msg := range pending {
		if err := p.send(msg); err != nil {
			log.Printf("mqtt: replay to %s: %v", msg.topic, err)
		}
	}
}
