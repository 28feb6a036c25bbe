package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/utils"
)

// EnforceHost gates the vault's operator routes (/readyz, /status, /reload)
// on the Host header. The port is ignored and "*.example.com" matches any
// subdomain. With no patterns configured every host is served.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		patterns = append(patterns, strings.ToLower(utils.ParseHostNoPort(h)))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			if hostAllowed(host, patterns) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("vault operator route: host not in allowed_hosts",
				logger.String("guard", "allowed_hosts"),
				logger.String("route", r.URL.Path),
				logger.String("method", r.Method),
				logger.String("request_host", host),
				logger.Int("allowed_patterns", len(patterns)))
			deny(w, "host "+host+" may not reach vault operator routes")
		})
	}
}

func hostAllowed(host string, patterns []string) bool {
	for _, p := range patterns {
		if matchHost(host, p) {
			return true
		}
	}
	return false
}

func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if wildcard, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(wildcard, ".") {
		return strings.HasSuffix(host, wildcard)
	}
	return false
}
