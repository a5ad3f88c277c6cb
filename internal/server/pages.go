package server

import (
	"html/template"
	"net/http"
)

var pageShell = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>Scrapter | {{.Title}}</title></head>
<body>
<div id="app" data-page="{{.Page}}"></div>
</body>
</html>
`))

// PageHandlers serve the public page shells. The pages themselves are
// client-rendered; the server only emits a shell naming the page to mount.
type PageHandlers struct{}

// NewPageHandlers creates the public page handlers
func NewPageHandlers() *PageHandlers {
	return &PageHandlers{}
}

func servePage(w http.ResponseWriter, title, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageShell.Execute(w, map[string]string{"Title": title, "Page": page})
}

// LandingHandler serves the marketing landing page shell
func (h *PageHandlers) LandingHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	servePage(w, "Welcome", "landing")
}

// LoginHandler serves the login page shell
func (h *PageHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	servePage(w, "Log in", "login")
}

// SignupHandler serves the signup page shell
func (h *PageHandlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	servePage(w, "Sign up", "signup")
}

// CheckEmailHandler serves the post-signup verification notice
func (h *PageHandlers) CheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	servePage(w, "Check your email", "check-email")
}
