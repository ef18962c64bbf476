package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"patra/internal/clients/models"
	"patra/pkg/platform/sentinel"
)

// InMemory is a thread-safe in-memory client store for development and tests.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*models.Client
	byClientID map[string]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[uuid.UUID]*models.Client),
		byClientID: make(map[string]*models.Client),
	}
}

func (s *InMemory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byClientID[client.ClientID]; exists {
		return sentinel.ErrConflict
	}
	c := cloneClient(client)
	s.byID[c.ID] = c
	s.byClientID[c.ClientID] = c
	return nil
}

func (s *InMemory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[client.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byClientID, existing.ClientID)
	c := cloneClient(client)
	s.byID[c.ID] = c
	s.byClientID[c.ClientID] = c
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneClient(client), nil
}

func (s *InMemory) FindByClientID(_ context.Context, clientID string) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.byClientID[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneClient(client), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Client, 0, len(s.byID))
	for _, client := range s.byID {
		out = append(out, cloneClient(client))
	}
	return out, nil
}

// cloneClient copies the client so callers cannot mutate stored state.
func cloneClient(c *models.Client) *models.Client {
	clone := *c
	clone.Scopes = append([]string(nil), c.Scopes...)
	return &clone
}
