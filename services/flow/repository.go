package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campaign-flow/pkg/flowgraph"
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	createFlowsSQL = `
		CREATE TABLE IF NOT EXISTS flows (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			nodes      JSONB NOT NULL DEFAULT '[]',
			edges      JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	seedFlowSQL = `
		INSERT INTO flows (id, name, nodes, edges)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	getFlowSQL = `
		SELECT id, name, nodes, edges, created_at, updated_at
		FROM flows WHERE id = $1`

	listFlowsSQL = `
		SELECT id, name, jsonb_array_length(nodes), updated_at
		FROM flows ORDER BY updated_at DESC, name`

	saveFlowSQL = `
		INSERT INTO flows (id, name, nodes, edges)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges,
			updated_at = NOW()
		RETURNING created_at, updated_at`

	deleteFlowSQL = `DELETE FROM flows WHERE id = $1`
)

// Repository handles flow persistence in PostgreSQL.
type Repository struct {
	db DBTX
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the flows table if it does not exist.
func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createFlowsSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Seed inserts the sample welcome flow if it does not already exist.
func (r *Repository) Seed(ctx context.Context) error {
	sample := SampleFlow()
	nodesJSON, edgesJSON, err := marshalGraph(sample)
	if err != nil {
		return fmt.Errorf("seed flow: %w", err)
	}
	if _, err := r.db.Exec(ctx, seedFlowSQL, sample.ID, sample.Name, nodesJSON, edgesJSON); err != nil {
		return fmt.Errorf("seed flow: %w", err)
	}
	return nil
}

// Get retrieves a flow by ID. Returns nil, nil if not found.
func (r *Repository) Get(ctx context.Context, id string) (*Flow, error) {
	var f Flow
	var nodesJSON, edgesJSON []byte

	err := r.db.QueryRow(ctx, getFlowSQL, id).
		Scan(&f.ID, &f.Name, &nodesJSON, &edgesJSON, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flow: %w", err)
	}

	if err := json.Unmarshal(nodesJSON, &f.Nodes); err != nil {
		return nil, fmt.Errorf("unmarshal nodes: %w", err)
	}
	if err := json.Unmarshal(edgesJSON, &f.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}
	return &f, nil
}

// List returns a summary of every flow, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]FlowSummary, error) {
	rows, err := r.db.Query(ctx, listFlowsSQL)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	summaries := []FlowSummary{}
	for rows.Next() {
		var s FlowSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.NodeCount, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan flow summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	return summaries, nil
}

// Save inserts or replaces f and stamps its timestamps from the database.
func (r *Repository) Save(ctx context.Context, f *Flow) error {
	nodesJSON, edgesJSON, err := marshalGraph(f)
	if err != nil {
		return fmt.Errorf("save flow: %w", err)
	}
	err = r.db.QueryRow(ctx, saveFlowSQL, f.ID, f.Name, nodesJSON, edgesJSON).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save flow: %w", err)
	}
	return nil
}

// Delete removes a flow. It reports false when no flow had the id.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteFlowSQL, id)
	if err != nil {
		return false, fmt.Errorf("delete flow: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InitDB creates the schema and seeds initial data. Called from main on startup.
func InitDB(ctx context.Context, db DBTX) error {
	repo := NewRepository(db)
	if err := repo.InitSchema(ctx); err != nil {
		return err
	}
	return repo.Seed(ctx)
}

func marshalGraph(f *Flow) (nodes, edges []byte, err error) {
	ns, es := f.Nodes, f.Edges
	if ns == nil {
		ns = []flowgraph.Node{}
	}
	if es == nil {
		es = []flowgraph.Edge{}
	}
	if nodes, err = json.Marshal(ns); err != nil {
		return nil, nil, fmt.Errorf("marshal nodes: %w", err)
	}
	if edges, err = json.Marshal(es); err != nil {
		return nil, nil, fmt.Errorf("marshal edges: %w", err)
	}
	return nodes, edges, nil
}
