package server

import (
	"net/http"

	jsonwriter "github.com/scrapter/scrapter-front/internal/json"
	"github.com/scrapter/scrapter-front/internal/session"
	"github.com/scrapter/scrapter-front/internal/storage"
)

// OpsHandlers expose the tracked-session and user views for the dashboard's
// operational pages. They require an authenticated request; deeper
// authorization lives with the backend, which rejects tokens it no longer
// recognizes.
type OpsHandlers struct {
	store storage.Store
}

// NewOpsHandlers creates handlers over the given store
func NewOpsHandlers(store storage.Store) *OpsHandlers {
	return &OpsHandlers{store: store}
}

// SessionsHandler lists active tracked sessions
func (h *OpsHandlers) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	if session.FromRequest(r) == nil {
		jsonwriter.WriteUnauthorized(w, "Not signed in")
		return
	}

	sessions, err := h.store.GetActiveSessions(r.Context())
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to list sessions")
		return
	}
	_ = jsonwriter.Write(w, map[string]any{"sessions": sessions})
}

// UsersHandler lists users seen by the dashboard
func (h *OpsHandlers) UsersHandler(w http.ResponseWriter, r *http.Request) {
	if session.FromRequest(r) == nil {
		jsonwriter.WriteUnauthorized(w, "Not signed in")
		return
	}

	users, err := h.store.GetAllUsers(r.Context())
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to list users")
		return
	}
	_ = jsonwriter.Write(w, map[string]any{"users": users})
}
