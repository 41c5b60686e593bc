package remotedriver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jvmcpg/internal/cpgerr"
	"jvmcpg/internal/driver"
	"jvmcpg/internal/schema"
)

// Server wraps a backing Driver (in-memory or SQLite) behind the wire
// protocol a remotedriver.Driver client speaks, grounded on the
// teacher's server/app.go: same Recoverer/RealIP middleware (no CORS
// middleware is installed), every route a direct pass-through to one
// Driver method with no query planning of its own (spec §4.11).
type Server struct {
	d driver.Driver
}

// NewServer wraps d for HTTP serving.
func NewServer(d driver.Driver) *Server {
	return &Server{d: d}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/vertices", s.handleAddVertex)
		r.Get("/vertices/{id}", s.handleGetVertex)
		r.Delete("/vertices/{id}", s.handleDeleteVertex)
		r.Get("/vertices", s.handleVertexIDs)

		r.Post("/edges", s.handleAddEdge)
		r.Get("/edges/exists", s.handleExistsEdge)

		r.Get("/methods/{fullName}", s.handleGetMethod)
		r.Delete("/methods/{fullName}", s.handleDeleteMethod)

		r.Get("/program-structure", s.handleProgramStructure)
		r.Get("/neighbours/{id}", s.handleNeighbours)
		r.Get("/graph", s.handleWholeGraph)
		r.Post("/clear", s.handleClear)
	})

	return r
}

func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	var dto nodeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n := fromNodeDTO(dto)
	if err := s.d.AddVertex(r.Context(), n); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNodeDTO(n))
}

func (s *Server) handleGetVertex(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	probe := driver.NewNode(schema.Unknown)
	probe.SetID(id)
	sg, err := s.d.GetNeighbours(r.Context(), probe)
	if err != nil {
		writeErr(w, err)
		return
	}
	node := sg.NodeByID(id)
	if node == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toNodeDTO(node))
}

func (s *Server) handleDeleteVertex(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n := driver.NewNode(schema.Unknown)
	n.SetID(id)
	if err := s.d.DeleteVertex(r.Context(), n); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVertexIDs(w http.ResponseWriter, r *http.Request) {
	lo, hi, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ids, err := s.d.GetVertexIDs(r.Context(), lo, hi)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleAddEdge(w http.ResponseWriter, r *http.Request) {
	var req addEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	src, dst := fromNodeDTO(req.Src), fromNodeDTO(req.Dst)
	if err := s.d.AddEdge(r.Context(), src, dst, schema.EdgeKind(req.Label), req.Properties); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addEdgeResponse{Src: toNodeDTO(src), Dst: toNodeDTO(dst)})
}

func (s *Server) handleExistsEdge(w http.ResponseWriter, r *http.Request) {
	src, err := strconv.ParseInt(r.URL.Query().Get("src"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dst, err := strconv.ParseInt(r.URL.Query().Get("dst"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	label := r.URL.Query().Get("label")

	srcNode := driver.NewNode(schema.Unknown)
	srcNode.SetID(src)
	dstNode := driver.NewNode(schema.Unknown)
	dstNode.SetID(dst)

	exists, err := s.d.ExistsEdge(r.Context(), srcNode, dstNode, schema.EdgeKind(label))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (s *Server) handleGetMethod(w http.ResponseWriter, r *http.Request) {
	fullName := chi.URLParam(r, "fullName")
	signature := r.URL.Query().Get("signature")
	includeBody := r.URL.Query().Get("body") == "true"

	sg, err := s.d.GetMethod(r.Context(), fullName, signature, includeBody)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubgraphDTO(sg))
}

func (s *Server) handleDeleteMethod(w http.ResponseWriter, r *http.Request) {
	fullName := chi.URLParam(r, "fullName")
	signature := r.URL.Query().Get("signature")
	if err := s.d.DeleteMethod(r.Context(), fullName, signature); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProgramStructure(w http.ResponseWriter, r *http.Request) {
	sg, err := s.d.GetProgramStructure(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubgraphDTO(sg))
}

func (s *Server) handleNeighbours(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	n := driver.NewNode(schema.Unknown)
	n.SetID(id)
	sg, err := s.d.GetNeighbours(r.Context(), n)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubgraphDTO(sg))
}

func (s *Server) handleWholeGraph(w http.ResponseWriter, r *http.Request) {
	sg, err := s.d.GetWholeGraph(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubgraphDTO(sg))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseRange(r *http.Request) (int64, int64, error) {
	lo, err := strconv.ParseInt(r.URL.Query().Get("lo"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	hi, err := strconv.ParseInt(r.URL.Query().Get("hi"), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorDTO{Detail: err.Error()})
}

// writeErr maps an internal error to the status code and body spec
// §4.11 requires: a SchemaViolation becomes 422 with its own fields
// carried through verbatim; anything else is a 500 (the client treats
// that as cpgerr.DriverUnavailable, spec §7).
func writeErr(w http.ResponseWriter, err error) {
	var sv *cpgerr.SchemaViolation
	if errors.As(err, &sv) {
		writeJSON(w, http.StatusUnprocessableEntity, errorDTO{
			MethodFullName: sv.MethodFullName,
			Signature:      sv.Signature,
			File:           sv.File,
			Detail:         sv.Detail,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorDTO{Detail: err.Error()})
}
