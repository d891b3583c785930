// Package http provides the HTTP handlers of the word server.
package http

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/phihung0131/vocabulary-extension/internal/models"
)

// WordService defines the interface for word operations required by the
// handlers.
type WordService interface {
	// Exists reports whether the server stores collocations for word.
	Exists(ctx context.Context, word string) (bool, error)
	// AddCollocations stores collocations and returns the inserted count.
	AddCollocations(ctx context.Context, collocations []models.Collocation) (int, error)
	// List returns every live collocation.
	List(ctx context.Context) ([]models.Collocation, error)
	// DeleteAll removes every collocation and returns the deletion count.
	DeleteAll(ctx context.Context) (int, error)
}

// WordHandler handles HTTP requests for word and collocation operations.
type WordHandler struct {
	// WordService performs the underlying word operations.
	WordService WordService
}

// CheckWord handles POST /api/check-word requests.
// It expects a JSON body with a non-empty "word" field and responds with
// {"exists": bool}.
func (h *WordHandler) CheckWord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Word) == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	exists, err := h.WordService.Exists(r.Context(), strings.ToLower(strings.TrimSpace(req.Word)))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
}

// AddCollocations handles POST /api/add-collocations requests.
// It decodes a JSON body with "collocations" and responds with
// {"insertedCount": n}.
func (h *WordHandler) AddCollocations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Collocations []models.Collocation `json:"collocations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Collocations) == 0 {
		http.Error(w, "no collocations", http.StatusBadRequest)
		return
	}

	inserted, err := h.WordService.AddCollocations(r.Context(), req.Collocations)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"insertedCount": inserted})
}

// List handles GET /api/collocations requests, responding with
// {"data": [...]}.
func (h *WordHandler) List(w http.ResponseWriter, r *http.Request) {
	collocations, err := h.WordService.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if collocations == nil {
		collocations = []models.Collocation{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": collocations})
}

// ExportCSV handles GET /api/export-csv requests and streams every stored
// collocation as CSV.
func (h *WordHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	collocations, err := h.WordService.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="collocations.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"word", "collocation", "ipa", "meaning", "synonyms", "version"})
	for _, c := range collocations {
		_ = cw.Write([]string{
			c.Word,
			c.Collocation,
			c.IPA,
			c.Meaning,
			strings.Join(c.Synonyms, "; "),
			strconv.FormatInt(c.Version, 10),
		})
	}
	cw.Flush()
}

// DeleteAll handles POST /api/delete-all requests, responding with
// {"deletedCount": n}.
func (h *WordHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.WordService.DeleteAll(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"deletedCount": deleted})
}
