package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/kupovina/internal/logger"
	"github.com/MrSnakeDoc/kupovina/internal/metrics"
	"github.com/MrSnakeDoc/kupovina/internal/utils"
)

// AllowOnlyCIDRS restricts the operator endpoints (healthz, readyz, infra,
// metrics) to the given IPs and CIDRs. An empty list lets everything through.
// trustProxy should be true when running behind a trusted reverse proxy/tunnel (e.g., cloudflared).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", len(allowed), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("operator endpoint refused",
					logger.String("path", r.URL.Path),
					logger.String("ip", ip),
					logger.String("remote_addr", r.RemoteAddr))
				reject(w, http.StatusForbidden, metrics.ReasonCIDR)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
