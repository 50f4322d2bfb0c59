package flow

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"campaign-flow/pkg/flowgraph"
)

// HandleCatalog returns the node palette grouped by category.
func (s *Service) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.catalog.Palette())
}

// HandleListFlows returns a summary of every stored flow.
func (s *Service) HandleListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.repo.List(r.Context())
	if err != nil {
		slog.Error("Failed to list flows", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(flows)
}

// HandleCreateFlow stores a new flow. A flow created without nodes starts with
// a single trigger.
func (s *Service) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var req SaveFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSaveRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := &Flow{ID: s.newID(), Name: strings.TrimSpace(req.Name), Nodes: req.Nodes, Edges: labelEdges(req.Edges)}
	if len(f.Nodes) == 0 {
		g := s.reducer.Apply(flowgraph.Graph{}, flowgraph.AddNode{Type: flowgraph.Trigger})
		f.Nodes, f.Edges = g.Nodes, g.Edges
	}
	slog.Debug("Creating flow", "id", f.ID, "name", f.Name)

	if err := s.repo.Save(r.Context(), f); err != nil {
		slog.Error("Failed to create flow", "id", f.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// HandleGetFlow loads a flow from the store and returns it as JSON.
func (s *Service) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(f)
}

// HandleUpdateFlow replaces the name and graph of an existing flow.
func (s *Service) HandleUpdateFlow(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	var req SaveFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateSaveRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f.Name = strings.TrimSpace(req.Name)
	f.Nodes, f.Edges = req.Nodes, labelEdges(req.Edges)
	if err := s.repo.Save(r.Context(), f); err != nil {
		slog.Error("Failed to update flow", "id", f.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(f)
}

// HandleDeleteFlow removes a flow.
func (s *Service) HandleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	id, ok := flowID(w, r)
	if !ok {
		return
	}

	deleted, err := s.repo.Delete(r.Context(), id)
	if err != nil {
		slog.Error("Failed to delete flow", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "flow not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyCommands runs editing commands through the reducer in order and
// saves the flow when any of them changed it. Commands that do not apply are
// reported in Applied and otherwise ignored.
func (s *Service) HandleApplyCommands(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Commands) == 0 {
		writeError(w, http.StatusBadRequest, errMissing("commands").Error())
		return
	}
	cmds := make([]flowgraph.Command, 0, len(req.Commands))
	for _, raw := range req.Commands {
		cmd, err := flowgraph.DecodeCommand(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cmds = append(cmds, cmd)
	}

	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	g := f.Graph()
	applied := make([]bool, len(cmds))
	changed := false
	for i, cmd := range cmds {
		g, applied[i] = s.reducer.Reduce(g, cmd)
		changed = changed || applied[i]
	}
	slog.Debug("Applied commands", "id", f.ID, "count", len(cmds), "changed", changed)

	if changed {
		f.Nodes, f.Edges = g.Nodes, g.Edges
		if err := s.repo.Save(r.Context(), f); err != nil {
			slog.Error("Failed to save flow", "id", f.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(CommandResponse{Flow: f, Applied: applied})
}

// HandleGetFields returns the property editor fields of one node.
func (s *Service) HandleGetFields(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	n, found := f.Graph().Node(mux.Vars(r)["nodeId"])
	if !found {
		writeError(w, http.StatusNotFound, "node not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(FieldsResponse{
		NodeID: n.ID, Type: n.Type, Label: n.Label,
		Fields: flowgraph.Fields(n, s.team),
	})
}

// HandleGetLayers returns the journey layering of a flow and the positions
// the arrange action would apply.
func (s *Service) HandleGetLayers(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	g := f.Graph()
	layers, err := flowgraph.Layers(g)
	resp := LayersResponse{
		Layers:    layers,
		Positions: flowgraph.Arrange(g, flowgraph.Origin),
		Cycle:     errors.Is(err, flowgraph.ErrCycleDetected),
	}
	if resp.Layers == nil {
		resp.Layers = [][]string{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// HandleValidateFlow returns the issues found in a flow.
func (s *Service) HandleValidateFlow(w http.ResponseWriter, r *http.Request) {
	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}

	issues := flowgraph.Validate(f.Graph())
	if issues == nil {
		issues = []flowgraph.Issue{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ValidateResponse{Valid: !flowgraph.HasErrors(issues), Issues: issues})
}

// HandlePreviewFlow walks a flow from its trigger and returns the steps a
// contact would go through. The request body is optional.
func (s *Service) HandlePreviewFlow(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for nodeID, h := range req.Branches {
		if h != flowgraph.HandleYes && h != flowgraph.HandleNo {
			writeError(w, http.StatusBadRequest, errInvalid("branches."+nodeID).Error())
			return
		}
	}

	f, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	slog.Debug("Previewing flow", "id", f.ID)

	results, err := s.engine.Preview(r.Context(), f.Graph(), NewPreviewState(req))
	if errors.Is(err, ErrNoTrigger) || errors.Is(err, ErrStepLimit) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.Error("Flow preview failed", "id", f.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(results)
}

// loadFlow resolves the {id} route variable to a stored flow, writing the
// error response itself when it cannot.
func (s *Service) loadFlow(w http.ResponseWriter, r *http.Request) (*Flow, bool) {
	id, ok := flowID(w, r)
	if !ok {
		return nil, false
	}
	slog.Debug("Getting flow", "id", id)

	f, err := s.repo.Get(r.Context(), id)
	if err != nil {
		slog.Error("Failed to get flow", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "flow not found")
		return nil, false
	}
	return f, true
}

func flowID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid flow id")
		return "", false
	}
	return id, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// validateSaveRequest rejects graphs the editor could never produce. Softer
// problems such as a missing branch are left to the validate endpoint.
func validateSaveRequest(req SaveFlowRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return errMissing("name")
	}
	ids := make(map[string]bool, len(req.Nodes))
	for _, n := range req.Nodes {
		if n.ID == "" {
			return errMissing("nodes.id")
		}
		if ids[n.ID] {
			return errInvalid("nodes." + n.ID)
		}
		ids[n.ID] = true
	}
	g := flowgraph.Graph{Nodes: req.Nodes}
	edgeIDs := make(map[string]bool, len(req.Edges))
	triples := make(map[[3]string]bool, len(req.Edges))
	for _, e := range req.Edges {
		if e.ID == "" {
			return errMissing("edges.id")
		}
		triple := [3]string{e.From, e.To, string(e.FromHandle)}
		if edgeIDs[e.ID] || triples[triple] || e.From == e.To || !ids[e.From] || !ids[e.To] {
			return errInvalid("edges." + e.ID)
		}
		edgeIDs[e.ID] = true
		triples[triple] = true
		from, _ := g.Node(e.From)
		if !flowgraph.HasOutputHandle(from.Type, e.FromHandle) {
			return errInvalid("edges." + e.ID + ".fromHandle")
		}
	}
	return nil
}

// labelEdges returns a copy of edges with each label derived from its handle.
func labelEdges(edges []flowgraph.Edge) []flowgraph.Edge {
	if edges == nil {
		return nil
	}
	out := make([]flowgraph.Edge, len(edges))
	for i, e := range edges {
		e.Label = flowgraph.EdgeLabel(e.FromHandle)
		out[i] = e
	}
	return out
}

type validationError struct {
	field string
	kind  string
}

func (e *validationError) Error() string {
	if e.kind == "missing" {
		return e.field + " is required"
	}
	return e.field + " is invalid"
}

func errMissing(field string) error { return &validationError{field: field, kind: "missing"} }
func errInvalid(field string) error { return &validationError{field: field, kind: "invalid"} }
