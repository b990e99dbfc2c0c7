// Package sse keeps track of the browser windows listening for draft reload events.
package sse

import (
	"sync"
)

type Client struct {
	Msg     chan string
	DraftID string
}

func NewClient(draftID string) *Client {
	return &Client{
		Msg:     make(chan string, 1),
		DraftID: draftID,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

// Delete removes client and closes its channel. Deleting twice is a no-op.
func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client watching draftID. Clients that are
// not ready to receive miss the message.
func (s *SSEClients) Broadcast(draftID, msg string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sent := 0
	for client := range s.clients {
		if client.DraftID != draftID {
			continue
		}
		select {
		case client.Msg <- msg:
			sent++
		default:
		}
	}
	return sent
}
