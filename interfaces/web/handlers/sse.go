package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"spportal/logging"
)

const keepAliveEvent = "keepalive"

var errStreamClosed = errors.New("stream closed")

// SSEClient is one open Server-Sent Events stream.
type SSEClient struct {
	id        string
	mu        sync.Mutex // serializes writes to the stream
	writer    http.ResponseWriter
	flusher   http.Flusher
	done      chan struct{}
	closeOnce sync.Once
}

// close ends the stream. It holds the write lock, so once it returns no frame
// is being written and none will be.
func (c *SSEClient) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.done)
		c.mu.Unlock()
	})
}

// send writes one frame. Keep-alives go out as comment lines, which EventSource ignores.
func (c *SSEClient) send(event, data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return errStreamClosed
	default:
	}

	var err error
	if event == keepAliveEvent {
		_, err = fmt.Fprintf(c.writer, ": %s\n\n", data)
	} else {
		_, err = fmt.Fprintf(c.writer, "event: %s\ndata: %s\n\n", event, data)
	}
	if err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}

// SSEManager fans probe notifications out to every open stream.
type SSEManager struct {
	clients   map[string]*SSEClient
	mu        sync.RWMutex
	logger    *logging.Logger
	keepAlive time.Duration
}

// NewSSEManager creates a manager. Call Run to start keep-alives.
func NewSSEManager() *SSEManager {
	return &SSEManager{
		clients:   make(map[string]*SSEClient),
		logger:    logging.Default().WithComponent("sse_manager"),
		keepAlive: 30 * time.Second,
	}
}

// AddClient registers w as the stream for clientID, ending any earlier stream
// with the same ID. It returns nil if w cannot flush.
func (s *SSEManager) AddClient(clientID string, w http.ResponseWriter) *SSEClient {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("Response writer does not support flushing", "client_id", clientID)
		return nil
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	flusher.Flush()

	client := &SSEClient{id: clientID, writer: w, flusher: flusher, done: make(chan struct{})}

	s.mu.Lock()
	previous := s.clients[clientID]
	s.clients[clientID] = client
	total := len(s.clients)
	s.mu.Unlock()

	if previous != nil {
		previous.close()
	}
	s.logger.Info("SSE client connected", "client_id", clientID, "total_clients", total, "replaced", previous != nil)
	return client
}

// RemoveClient ends the stream registered under clientID.
func (s *SSEManager) RemoveClient(clientID string) {
	s.mu.Lock()
	client := s.clients[clientID]
	delete(s.clients, clientID)
	s.mu.Unlock()

	if client != nil {
		client.close()
		s.logger.Info("SSE client disconnected", "client_id", clientID)
	}
}

// drop ends client and unregisters it unless a reconnect already took its ID.
func (s *SSEManager) drop(client *SSEClient) {
	s.mu.Lock()
	if s.clients[client.id] == client {
		delete(s.clients, client.id)
	}
	s.mu.Unlock()
	client.close()
}

// ClientCount returns the number of connected clients.
func (s *SSEManager) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *SSEManager) snapshot() []*SSEClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SSEClient, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast sends event to every client. Clients that fail to receive it are dropped.
func (s *SSEManager) Broadcast(event, data string) {
	sent, failed := s.sendAll(event, data)
	s.logger.Debug("Broadcast event", "event", event, "sent", sent, "failed", failed)
}

// SendKeepAlive pings every client so idle proxies keep the streams open.
func (s *SSEManager) SendKeepAlive() {
	s.sendAll(keepAliveEvent, time.Now().UTC().Format(time.RFC3339))
}

func (s *SSEManager) sendAll(event, data string) (sent, failed int) {
	for _, client := range s.snapshot() {
		if err := client.send(event, data); err != nil {
			s.logger.Debug("Dropping SSE client", "client_id", client.id, "event", event, "error", err)
			s.drop(client)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// Run sends keep-alives until ctx is cancelled, then ends every open stream so
// server shutdown is not held up.
func (s *SSEManager) Run(ctx context.Context) {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for _, client := range s.snapshot() {
				s.drop(client)
			}
			return
		case <-ticker.C:
			s.SendKeepAlive()
		}
	}
}

// HandleSSEConnection serves the live probe stream until the client disconnects
// or is replaced. Clients may pass ?client_id= to resume under a stable ID.
func (s *SSEManager) HandleSSEConnection(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	client := s.AddClient(clientID, w)
	if client == nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	if err := client.send(keepAliveEvent, "connected "+clientID); err != nil {
		s.logger.Warn("Failed to open SSE stream", "client_id", clientID, "error", err)
		s.drop(client)
		return
	}

	select {
	case <-r.Context().Done():
		s.drop(client)
	case <-client.done:
		// Wait out a write that started before the stream was replaced.
		client.mu.Lock()
		client.mu.Unlock()
	}
}
