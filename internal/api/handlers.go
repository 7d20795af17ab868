package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hsnlab/SLAMBUC/pkg/buildinfo"
	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// PartitionRequest is the body of POST /v1/partition. Omitted parameters
// take the values of partition.DefaultParams.
type PartitionRequest struct {
	Tree json.RawMessage `json:"tree"`
	pipeline.Options
}

// PartitionResponse wraps the pipeline result with rendered diagrams.
type PartitionResponse struct {
	*pipeline.Result
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

// CompareRequest is the body of POST /v1/compare.
type CompareRequest struct {
	Tree       json.RawMessage `json:"tree"`
	Algorithms []string        `json:"algorithms,omitempty"`
	pipeline.Options
}

// AlgorithmInfo describes a registered algorithm. Exact holds only for
// algorithms that are optimal on every input; bottom-up results report
// their own caveats as warnings.
type AlgorithmInfo struct {
	Name  string `json:"name"`
	Exact bool   `json:"exact"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) algorithms(w http.ResponseWriter, _ *http.Request) {
	names := partition.Algorithms()
	out := make([]AlgorithmInfo, len(names))
	for i, name := range names {
		out[i] = AlgorithmInfo{Name: name, Exact: partition.Exact(name)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) partition(w http.ResponseWriter, r *http.Request) {
	req := PartitionRequest{Options: pipeline.Options{Params: partition.DefaultParams()}}
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := parseTree(req.Tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Options.Logger = s.log
	res, err := s.runner.Execute(r.Context(), t, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PartitionResponse{Result: res, Artifacts: res.Artifacts})
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	req := CompareRequest{Options: pipeline.Options{Params: partition.DefaultParams()}}
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := parseTree(req.Tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.Options.Logger = s.log
	cmp, err := s.runner.Compare(r.Context(), t, req.Algorithms, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	f := store.Filter{TreeHash: q.Get("tree_hash"), Algorithm: q.Get("algorithm")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		f.Limit = n
	}
	runs, err := st.List(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w)
	if !ok {
		return
	}
	run, err := st.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	st, ok := s.store(w)
	if !ok {
		return
	}
	if err := st.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) store(w http.ResponseWriter) (store.Store, bool) {
	if s.runner.Store == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "run archive is disabled"))
		return nil, false
	}
	return s.runner.Store, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func parseTree(raw json.RawMessage) (*tree.Tree, error) {
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTree, "request carries no tree")
	}
	t, err := pkgio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid tree")
	}
	return t, nil
}
