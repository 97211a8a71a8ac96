// Package webhook posts structured moisture reports to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/sweeney/soil-monitor/internal/events"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultQueueSize = 16
)

// Client delivers reports from a single background worker so the control
// loop never waits on the network. Reports that arrive while the queue is
// full are dropped.
type Client struct {
	url   string
	http  *http.Client
	queue chan events.Report

	once sync.Once
	done chan struct{}
}

// New starts a Client posting to url. httpClient may be nil.
func New(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		url:   url,
		http:  httpClient,
		queue: make(chan events.Report, defaultQueueSize),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

// Report queues r for delivery.
func (c *Client) Report(r events.Report) {
	select {
	case c.queue <- r:
	default:
		log.Printf("webhook: queue full, dropping report")
	}
}

// Close stops accepting reports and waits for queued ones to be sent.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.queue) })
	<-c.done
	return nil
}

func (c *Client) run() {
	defer close(c.done)
	for r := range c.queue {
		if err := c.post(context.Background(), r); err != nil {
			log.Printf("webhook: %v", err)
		}
	}
}

func (c *Client) post(ctx context.Context, r events.Report) error {
	body, err := events.FormatReport(r)
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", c.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: status %d", c.url, resp.StatusCode)
	}
	return nil
}
