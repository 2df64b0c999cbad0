package middleware

import "net/http"

// CORS allows browser clients from the configured origins to call the API.
// An empty origin list allows any origin, which suits local development.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowedMap := map[string]bool{}
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowedMap[origin] = true
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case len(allowedMap) == 0 && origin != "":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowedMap[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Trace-ID")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
