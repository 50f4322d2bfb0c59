package flow

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"campaign-flow/pkg/flowgraph"
)

// FlowRepo abstracts flow persistence for testability.
type FlowRepo interface {
	Get(ctx context.Context, id string) (*Flow, error)
	List(ctx context.Context) ([]FlowSummary, error)
	Save(ctx context.Context, f *Flow) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Options configures a Service.
type Options struct {
	// Catalog defaults to a catalog with an empty default sender.
	Catalog     *flowgraph.Catalog
	TeamMembers []flowgraph.TeamMember
	// NewID generates flow, node and edge ids. Defaults to random UUIDs.
	NewID func() string
}

// Service wires together the repository, the graph reducer and the preview
// engine for the flow domain.
type Service struct {
	repo    FlowRepo
	catalog *flowgraph.Catalog
	reducer *flowgraph.Reducer
	engine  *Engine
	team    []flowgraph.TeamMember
	newID   func() string
}

// NewService creates a Service over repo.
func NewService(repo FlowRepo, opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = flowgraph.NewCatalog("")
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		repo:    repo,
		catalog: opts.Catalog,
		reducer: flowgraph.NewReducer(opts.Catalog, flowgraph.WithIDGenerator(opts.NewID)),
		engine:  NewEngine(NewRegistry(opts.TeamMembers)),
		team:    opts.TeamMembers,
		newID:   opts.NewID,
	}
}

// jsonMiddleware sets the Content-Type header to application/json.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoadRoutes registers flow HTTP handlers on the given router.
func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	parentRouter.Handle("/catalog", jsonMiddleware(http.HandlerFunc(s.HandleCatalog))).Methods("GET")

	router := parentRouter.PathPrefix("/flows").Subrouter()
	router.StrictSlash(false)
	router.Use(jsonMiddleware)

	router.HandleFunc("", s.HandleListFlows).Methods("GET")
	router.HandleFunc("", s.HandleCreateFlow).Methods("POST")
	router.HandleFunc("/{id}", s.HandleGetFlow).Methods("GET")
	router.HandleFunc("/{id}", s.HandleUpdateFlow).Methods("PUT")
	router.HandleFunc("/{id}", s.HandleDeleteFlow).Methods("DELETE")
	router.HandleFunc("/{id}/commands", s.HandleApplyCommands).Methods("POST")
	router.HandleFunc("/{id}/nodes/{nodeId}/fields", s.HandleGetFields).Methods("GET")
	router.HandleFunc("/{id}/layers", s.HandleGetLayers).Methods("GET")
	router.HandleFunc("/{id}/validate", s.HandleValidateFlow).Methods("GET")
	router.HandleFunc("/{id}/preview", s.HandlePreviewFlow).Methods("POST")
}
