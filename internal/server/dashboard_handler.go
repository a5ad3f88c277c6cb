package server

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/scrapter/scrapter-front/internal/guard"
	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
)

// dashboardShell is the minimal server-rendered shell for the protected
// area. The real dashboard content is rendered client-side; the shell only
// needs the optimistic identity from the profile cookie.
var dashboardShell = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Scrapter</title></head>
<body>
<div id="app" data-owner="{{.Owner}}"></div>
</body>
</html>
`))

// DashboardHandler serves the protected-area shell from the layout cache
type DashboardHandler struct {
	layouts *LayoutCache
}

// NewDashboardHandler creates the shell handler over the given cache
func NewDashboardHandler(layouts *LayoutCache) *DashboardHandler {
	return &DashboardHandler{layouts: layouts}
}

// ServeHTTP renders (or replays) the shell for the request's identity. The
// route guard already redirected unauthenticated requests, but a nil check
// stays: the guard and this handler must not silently disagree.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)
	if sess == nil {
		http.Redirect(w, r, guard.LoginPath, http.StatusFound)
		return
	}

	if content, ok := h.layouts.Get(sess.Owner); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(content)
		return
	}

	var buf bytes.Buffer
	if err := dashboardShell.Execute(&buf, map[string]string{"Owner": sess.Owner}); err != nil {
		log.LogError("Failed to render dashboard shell: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.layouts.Put(sess.Owner, buf.Bytes())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
