package sse

import (
	"encoding/json"
	"sync"
	"time"

	"writer-studio/internal/logger"
)

// Event types pushed to browsers.
const (
	EventCollection    = "collection"
	EventConversations = "conversations"
	EventNotice        = "notice"
	EventOwner         = "owner"
)

// clientBuffer is how many frames a connection may fall behind before the
// oldest queued frame is dropped.
const clientBuffer = 10

// Manager manages Server-Sent Event connections. Connections are grouped
// by workspace id so every tab of one browser session sees the same events.
type Manager struct {
	clients    map[string]map[chan []byte]bool // workspace id -> connection channels
	clientsMux sync.RWMutex

	logger *logger.Logger
}

func NewManager(logger *logger.Logger) *Manager {
	return &Manager{
		clients: make(map[string]map[chan []byte]bool),
		logger:  logger.With("sse"),
	}
}

// AddClient registers a new connection for key.
func (s *Manager) AddClient(key string) chan []byte {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	if s.clients[key] == nil {
		s.clients[key] = make(map[chan []byte]bool)
	}

	channel := make(chan []byte, clientBuffer)
	s.clients[key][channel] = true

	s.logger.Info("Added SSE client for workspace:", key, "total clients:", len(s.clients[key]))
	return channel
}

// RemoveClient unregisters and closes channel.
func (s *Manager) RemoveClient(key string, channel chan []byte) {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	if clients, exists := s.clients[key]; exists {
		if !clients[channel] {
			return
		}
		delete(clients, channel)
		close(channel)

		s.logger.Info("Removed SSE client for workspace:", key, "remaining clients:", len(clients))

		if len(clients) == 0 {
			delete(s.clients, key)
		}
	}
}

// Broadcast sends one event to every connection of key. It never waits on
// a connection: a full buffer loses its oldest frame to the new one.
func (s *Manager) Broadcast(key, eventType string, data any) {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()

	clients, exists := s.clients[key]
	if !exists {
		return
	}

	event := map[string]any{
		"type": eventType,
		"data": data,
		"time": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal broadcast event:", err)
		return
	}

	for channel := range clients {
		if send(channel, jsonData) {
			continue
		}
		// client is not reading
		select {
		case <-channel:
		default:
		}
		if !send(channel, jsonData) {
			s.logger.Warn("Dropped", eventType, "for slow client of workspace:", key)
		}
	}
}

func send(channel chan []byte, data []byte) bool {
	select {
	case channel <- data:
		return true
	default:
		return false
	}
}

// Close drops every connection.
func (s *Manager) Close() {
	s.clientsMux.Lock()
	defer s.clientsMux.Unlock()

	for key, clients := range s.clients {
		for channel := range clients {
			close(channel)
		}
		delete(s.clients, key)
	}
}

func (s *Manager) ClientCount(key string) int {
	s.clientsMux.RLock()
	defer s.clientsMux.RUnlock()
	return len(s.clients[key])
}

func (s *Manager) HasClient(key string) bool {
	return s.ClientCount(key) > 0
}
