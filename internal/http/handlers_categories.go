package http

import (
	"fmt"
	"net/http"
	"strings"

	"idledger/internal/aggregate"
	"idledger/internal/core"
	"idledger/internal/repository"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	OK(w, s.repo.Categories())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := decodeValid(w, r, &in); err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := s.checkCategoryName(in.Name, ""); err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}

	c, err := s.repo.CreateCategory(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, string(repository.OpCreate))
		return
	}
	logMutation(r, repository.OpCreate, core.CollectionCategories, []string{c.ID})
	Created(w, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch core.CategoryPatch
	err := decodeJSON(w, r, &patch)
	if err == nil {
		err = validateCategoryPatch(patch)
	}
	id := r.PathValue("id")
	if err == nil && patch.Name.Set {
		patch.Name.Value = strings.TrimSpace(patch.Name.Value)
		err = s.checkCategoryName(patch.Name.Value, id)
	}
	if err == nil {
		err = s.repo.UpdateCategory(r.Context(), id, patch)
	}
	if err != nil {
		s.writeError(w, r, err, string(repository.OpUpdate))
		return
	}
	NoContent(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, string(repository.OpDelete))
		return
	}
	NoContent(w)
}

// handleCategoryRecords lists the records filed under a category name,
// narrowed by an optional case-insensitive name query.
func (s *Server) handleCategoryRecords(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	records := s.repo.Records()
	OK(w, map[string]any{
		"category": aggregate.CategoryTotals(records, name),
		"records":  aggregate.SearchCategory(records, name, strings.TrimSpace(r.URL.Query().Get("q"))),
	})
}

// checkCategoryName rejects a name already held by a category other than
// exceptID. Records reference categories by name, so names must stay unique.
func (s *Server) checkCategoryName(name, exceptID string) error {
	for _, c := range s.repo.Categories() {
		if c.Name == name && c.ID != exceptID {
			return fmt.Errorf("%w: category %q already exists", errConflict, name)
		}
	}
	return nil
}
