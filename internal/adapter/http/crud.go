package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ---------------------------------------------------------------------------
// Generic handler factories
// ---------------------------------------------------------------------------

// handleListByParam creates a handler that lists resources scoped by a URL parameter.
func handleListByParam[T any](param string, listFn func(ctx context.Context, paramVal string) ([]T, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		val := chi.URLParam(r, param)
		items, err := listFn(r.Context(), val)
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// handleGet creates a handler that retrieves a single resource by URL param "id".
func handleGet[T any](getFn func(ctx context.Context, id string) (*T, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		item, err := getFn(r.Context(), id)
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// handleCreateUnder creates a handler that decodes a JSON body and creates a
// resource scoped by URL param "id" (the parent project).
func handleCreateUnder[Req any, Res any](createFn func(ctx context.Context, parentID string, req Req) (*Res, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID := chi.URLParam(r, "id")
		req, ok := readJSON[Req](w, r)
		if !ok {
			return
		}
		res, err := createFn(r.Context(), parentID, req)
		if err != nil {
			writeDomainError(w, err, "creation failed")
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}
