package api

import (
	"meal-export-backend/internal/audit"
	"meal-export-backend/internal/neis"
	"meal-export-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	fetcher neis.Fetcher
	store   store.Store
	audit   audit.Recorder
}

// NewHandler creates a new API handler. A nil store or recorder disables
// the fetch history.
func NewHandler(f neis.Fetcher, s store.Store, r audit.Recorder) *Handler {
	if s == nil {
		s = store.NewNopStore()
	}
	if r == nil {
		r = audit.Discard{}
	}
	return &Handler{
		fetcher: f,
		store:   s,
		audit:   r,
	}
}
