package authapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"raven/cmd/security/token"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const genericAuthFailure = "Invalid authentication credentials"

var gateDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "raven_auth_gate_decisions_total",
		Help: "Authorization gate outcomes per request",
	},
	[]string{"outcome"}, // excluded / admitted / rejected / error
)

type contextKey struct{}

// SubjectFromContext returns the verified token subject placed on the request
// context by the Gate.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(contextKey{}).(string)
	return s, ok && s != ""
}

// ContextWithSubject attaches a verified subject to the context. The Gate
// calls this on admission; handlers under test may call it directly.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKey{}, subject)
}

// Gate is the request authorization stage. Requests whose path matches an
// exempt prefix pass through unauthenticated; everything else needs a bearer
// token that the verifier accepts.
type Gate struct {
	log    *slog.Logger
	secret []byte
	exempt []string
	now    func() time.Time
}

// NewGate builds the authorization gate from the shared auth config.
func NewGate(log *slog.Logger, cfg Config) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{
		log:    log,
		secret: []byte(cfg.Secret),
		exempt: cfg.ExemptPaths,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Wrap applies the gate in front of next.
//
// The gate fails closed: an unexpected panic during verification yields a 500
// with the same envelope shape, never an admitted request.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range g.exempt {
			if strings.HasPrefix(r.URL.Path, prefix) {
				gateDecisions.WithLabelValues("excluded").Inc()
				next.ServeHTTP(w, r)
				return
			}
		}

		defer func() {
			if rec := recover(); rec != nil {
				gateDecisions.WithLabelValues("error").Inc()
				g.log.Error("auth.gate.panic", "path", r.URL.Path, "panic", rec)
				WriteEnvelope(w, http.StatusInternalServerError, false, "Failed to verify access token", nil)
			}
		}()

		raw := bearerToken(r)
		if raw == "" {
			gateDecisions.WithLabelValues("rejected").Inc()
			WriteEnvelope(w, http.StatusUnauthorized, false, genericAuthFailure, nil)
			return
		}

		claims, err := token.Verify(g.secret, raw, g.now())
		if err != nil {
			gateDecisions.WithLabelValues("rejected").Inc()
			WriteEnvelope(w, http.StatusUnauthorized, false, genericAuthFailure, nil)
			return
		}

		gateDecisions.WithLabelValues("admitted").Inc()
		ctx := ContextWithSubject(r.Context(), claims.Subject())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}
