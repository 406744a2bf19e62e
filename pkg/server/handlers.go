package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/underwriter/pkg/audit"
	"mercator-hq/underwriter/pkg/document"
	"mercator-hq/underwriter/pkg/documents"
	"mercator-hq/underwriter/pkg/engine"
	"mercator-hq/underwriter/pkg/rules"
)

// RulesResponse is the body of GET /rules.
type RulesResponse struct {
	CatalogVersion string          `json:"catalog_version"`
	LoadedAt       time.Time       `json:"loaded_at"`
	Rules          []*rules.Rule   `json:"rules"`
	Findings       []rules.Finding `json:"findings,omitempty"`
}

// AuditResponse is the body of GET /audit.
type AuditResponse struct {
	Records []*audit.Record `json:"records"`

	// Total counts every matching record, ignoring the limit.
	Total int64 `json:"total"`
}

// readBody reads the request body within the configured size limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	return io.ReadAll(r.Body)
}

// handleValidate evaluates the context payload in the request body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	c, err := document.ParseContext(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidJSON, err.Error())
		return
	}

	ev, err := s.deps.Evaluator.Evaluate(r.Context(), c)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleEvaluateLoan evaluates the stored documents of a loan.
func (s *Server) handleEvaluateLoan(w http.ResponseWriter, r *http.Request) {
	ev, err := s.deps.Evaluator.EvaluateLoan(r.Context(), r.PathValue("loanID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handlePutDocument stores one source document of a loan.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	source, err := document.ParseSource(r.PathValue("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidValue, err.Error())
		return
	}

	body, err := s.readBody(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var doc document.Value
	if err := doc.UnmarshalJSON(body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidJSON, err.Error())
		return
	}
	if doc.Kind() != document.KindMapping {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidValue,
			fmt.Sprintf("%s document must be a JSON object", source))
		return
	}

	if err := s.deps.Documents.Put(r.Context(), r.PathValue("loanID"), source, doc); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetDocument returns one stored source document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	source, err := document.ParseSource(r.PathValue("source"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidValue, err.Error())
		return
	}

	doc, err := s.deps.Documents.Get(r.Context(), r.PathValue("loanID"), source)
	if errors.Is(err, documents.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, CodeDocumentNotFound, "document not found")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDeleteDocuments removes every stored document of a loan.
func (s *Server) handleDeleteDocuments(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Documents.Delete(r.Context(), r.PathValue("loanID")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRules returns the active rule catalog.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Evaluator.Snapshot()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RulesResponse{
		CatalogVersion: snap.Version,
		LoadedAt:       snap.LoadedAt,
		Rules:          snap.Rules,
		Findings:       snap.Findings,
	})
}

// handleListValidators returns the registered validator names.
func (s *Server) handleListValidators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"validators": s.deps.Evaluator.Registry().Names(),
	})
}

// handleQueryAudit searches audit records. Supported parameters: loan_id,
// since and until (RFC 3339), status and limit.
func (s *Server) handleQueryAudit(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseAuditQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, CodeInvalidValue, err.Error())
		return
	}

	records, err := s.deps.Audit.Query(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	total, err := s.deps.Audit.Count(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}
	writeJSON(w, http.StatusOK, AuditResponse{Records: records, Total: total})
}

// handleGetAudit returns one audit record by ID.
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	rec, err := s.deps.Audit.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, audit.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, ErrorTypeNotFound, CodeRecordNotFound, "audit record not found")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) parseAuditQuery(r *http.Request) (*audit.Query, error) {
	values := r.URL.Query()
	q := &audit.Query{
		LoanID: values.Get("loan_id"),
		Limit:  s.deps.AuditQuery.DefaultLimit,
	}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"since", &q.Since}, {"until", &q.Until}} {
		raw := values.Get(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an RFC 3339 timestamp", bound.name)
		}
		*bound.dst = &t
	}

	if raw := values.Get("status"); raw != "" {
		status := engine.Status(raw)
		if !status.Valid() {
			return nil, fmt.Errorf("unknown status %q", raw)
		}
		q.Status = status
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("limit must be a positive integer")
		}
		q.Limit = limit
	}
	if q.Limit > s.deps.AuditQuery.MaxLimit {
		q.Limit = s.deps.AuditQuery.MaxLimit
	}
	return q, nil
}
