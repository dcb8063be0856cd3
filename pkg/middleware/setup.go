package middleware

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

var setupPage = template.Must(template.New("setup").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Setup required</title></head>
<body><div class="error">
<h3>Supabase configuration required</h3>
<p>Follow these steps to configure the backend:</p>
<ol>{{range .}}<li><pre>{{.}}</pre></li>{{end}}</ol>
</div></body></html>`))

// SetupRequired answers 503 with setup instructions while ready reports
// false. Paths listed in except are let through.
func SetupRequired(ready func() bool, except ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ready() || exempt(r.URL.Path, except) {
				next.ServeHTTP(w, r)
				return
			}
			if wantsJSON(r) {
				response.Error(w, http.StatusServiceUnavailable, config.SetupInstructions())
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			setupPage.Execute(w, config.SetupSteps()) //nolint:errcheck
		})
	}
}

func exempt(path string, except []string) bool {
	for _, p := range except {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
