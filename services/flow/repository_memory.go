package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"campaign-flow/pkg/flowgraph"
)

// MemoryRepository keeps flows in process memory. Flows are stored as their
// JSON encoding so callers never share slices with the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	flows map[string][]byte
	now   func() time.Time
}

// NewMemoryRepository returns an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{flows: make(map[string][]byte), now: time.Now}
}

// Seed stores the sample welcome flow if it is not already present.
func (r *MemoryRepository) Seed(ctx context.Context) error {
	r.mu.RLock()
	_, ok := r.flows[sampleFlowID]
	r.mu.RUnlock()
	if ok {
		return nil
	}
	return r.Save(ctx, SampleFlow())
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Flow, error) {
	r.mu.RLock()
	b, ok := r.flows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var f Flow
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("get flow: %w", err)
	}
	return &f, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]FlowSummary, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.flows))
	for id := range r.flows {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	summaries := make([]FlowSummary, 0, len(ids))
	for _, id := range ids {
		f, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		summaries = append(summaries, FlowSummary{
			ID: f.ID, Name: f.Name, NodeCount: len(f.Nodes), UpdatedAt: f.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.Name < b.Name
	})
	return summaries, nil
}

func (r *MemoryRepository) Save(_ context.Context, f *Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	f.CreatedAt = now
	if prev, ok := r.flows[f.ID]; ok {
		var old Flow
		if err := json.Unmarshal(prev, &old); err != nil {
			return fmt.Errorf("save flow: %w", err)
		}
		f.CreatedAt = old.CreatedAt
	}
	f.UpdatedAt = now

	stored := *f
	if stored.Nodes == nil {
		stored.Nodes = []flowgraph.Node{}
	}
	if stored.Edges == nil {
		stored.Edges = []flowgraph.Edge{}
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("save flow: %w", err)
	}
	r.flows[f.ID] = b
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.flows[id]; !ok {
		return false, nil
	}
	delete(r.flows, id)
	return true, nil
}
