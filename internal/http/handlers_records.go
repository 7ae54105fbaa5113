package http

import (
	"context"
	"net/http"
	"strings"

	"idledger/internal/core"
	"idledger/internal/repository"
)

// handleListRecords returns records in insertion order, optionally filtered
// by exact category, status and dateAdded.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	status := core.Status(strings.ToUpper(q.Get("status")))
	date := q.Get("date")

	if status != "" && !status.Valid() {
		BadRequestError("status must be SOLD or AVAILABLE").Write(w)
		return
	}

	out := []core.Record{}
	for _, rec := range s.repo.Records() {
		if category != "" && rec.Category != category {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		if date != "" && rec.DateAdded != date {
			continue
		}
		out = append(out, rec)
	}
	OK(w, out)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in core.RecordInput
	if err := decodeValid(w, r, &in); err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	rec, err := s.repo.CreateRecord(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	logMutation(r, repository.OpCreate, core.CollectionRecords, []string{rec.ID})
	Created(w, rec)
}

func (s *Server) handleCreateRecordBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, string(repository.OpCreateBatch))
		return
	}
	in := req.input()
	if err := core.Validate(in); err != nil {
		s.writeError(w, r, err, string(repository.OpCreateBatch))
		return
	}

	created, err := s.repo.CreateRecords(r.Context(), in.Records())
	if err != nil {
		s.writeError(w, r, err, string(repository.OpCreateBatch))
		return
	}
	ids := make([]string, len(created))
	for i, rec := range created {
		ids[i] = rec.ID
	}
	logMutation(r, repository.OpCreateBatch, core.CollectionRecords, ids)
	Created(w, created)
}

func (s *Server) handleBulkUpdateRecords(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	err := decodeValid(w, r, &req)
	if err == nil {
		err = validateRecordPatch(req.Patch)
	}
	if err == nil {
		err = s.repo.BulkUpdateRecords(r.Context(), req.IDs, req.Patch)
	}
	if err != nil {
		s.writeError(w, r, err, string(repository.OpBulkUpdate))
		return
	}
	NoContent(w)
}

func (s *Server) handleBulkDeleteRecords(w http.ResponseWriter, r *http.Request) {
	s.bulkIDs(w, r, repository.OpBulkDelete, s.repo.BulkDeleteRecords)
}

func (s *Server) handleBulkToggleRecords(w http.ResponseWriter, r *http.Request) {
	s.bulkIDs(w, r, repository.OpBulkToggleStatus, s.repo.BulkToggleStatus)
}

func (s *Server) bulkIDs(w http.ResponseWriter, r *http.Request, op repository.Op, apply func(context.Context, []string) error) {
	var req idsRequest
	err := decodeValid(w, r, &req)
	if err == nil {
		err = apply(r.Context(), req.IDs)
	}
	if err != nil {
		s.writeError(w, r, err, string(op))
		return
	}
	NoContent(w)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	var patch core.RecordPatch
	err := decodeJSON(w, r, &patch)
	if err == nil {
		err = validateRecordPatch(patch)
	}
	if err == nil {
		err = s.repo.UpdateRecord(r.Context(), r.PathValue("id"), patch)
	}
	if err != nil {
		s.writeError(w, r, err, string(repository.OpUpdate))
		return
	}
	NoContent(w)
}

func (s *Server) handleToggleRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.ToggleStatus(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, string(repository.OpToggleStatus))
		return
	}
	NoContent(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteRecord(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, string(repository.OpDelete))
		return
	}
	NoContent(w)
}
