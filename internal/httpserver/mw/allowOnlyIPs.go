package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/utils"
)

// AllowOnlyCIDRS keeps the vault's operator routes and /metrics reachable
// only from the configured IPs and CIDRs. With no rules every client is
// served. The client address comes from X-Forwarded-For only when trustProxy
// is set.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("operator routes open to every client", logger.String("guard", "allowed_cidrs"))
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("operator routes restricted by client address",
		logger.String("guard", "allowed_cidrs"),
		logger.Int("cidr_rules", len(allowed)),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, trustProxy)
			if m.Allow(client) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("vault operator route: client outside allowed_cidrs",
				logger.String("guard", "allowed_cidrs"),
				logger.String("route", r.URL.Path),
				logger.String("method", r.Method),
				logger.String("client_ip", client),
				logger.Bool("trust_proxy", trustProxy))
			deny(w, "client "+client+" may not reach vault operator routes")
		})
	}
}
