package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aretw0/aoflow/pkg/domain"
)

// Loader implements ports.GraphLoader and ports.Watchable over a snapshot
// held in memory. The snapshot is kept serialized so every Load decodes a
// fresh copy.
type Loader struct {
	mu       sync.RWMutex
	raw      []byte
	watchers []chan struct{}
}

// NewLoader creates a loader from raw snapshot JSON.
func NewLoader(data string) (*Loader, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &Loader{raw: []byte(data)}, nil
}

// NewFromSnapshot creates a loader from domain objects.
// This handles serialization automatically, improving DX for tests.
func NewFromSnapshot(snap *domain.Snapshot) (*Loader, error) {
	l := &Loader{}
	if err := l.Set(snap); err != nil {
		return nil, err
	}
	return l, nil
}

// NewFromNodes is NewFromSnapshot for a node list and an edge list.
func NewFromNodes(nodes []domain.Node, edges ...domain.Edge) (*Loader, error) {
	return NewFromSnapshot(domain.NewSnapshot(nodes, edges))
}

// Load implements ports.GraphLoader.
func (l *Loader) Load(ctx context.Context) (*domain.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var snap domain.Snapshot
	if err := json.Unmarshal(l.raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Set replaces the snapshot and signals watchers.
func (l *Loader) Set(snap *domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.raw = raw
	for _, ch := range l.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Watch implements ports.Watchable. The channel is closed when ctx ends.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	l.mu.Lock()
	l.watchers = append(l.watchers, ch)
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, w := range l.watchers {
			if w == ch {
				l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}
