package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/babyfoot-ledger/internal/ledger"
	"github.com/slack-go/slack"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags every request with an id, echoes it in the response and attaches
// a logger carrying it to the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := log.With("request_id", id)
		ctx := log.WithContext(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// paramsMiddleware handles common query parameters like 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		// Handle 'verbose' on a copy of the request logger so other requests keep their level.
		if r.URL.Query().Get("verbose") == "true" {
			logger := log.FromContext(ctx).With()
			logger.SetLevel(log.DebugLevel)
			ctx = log.WithContext(ctx, logger)
		}
		log.FromContext(ctx).Info("incoming request", "method", r.Method, "url", r.URL.String())

		// Handle 'dry_run'. Writes made with this context publish dry-run events.
		isDryRun := r.URL.Query().Get("dry_run") == "true"
		ctx = ledger.WithDryRun(ctx, isDryRun)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// slackVerifyMiddleware rejects requests that are not signed with signingSecret. An empty
// secret disables the check for local development.
func slackVerifyMiddleware(signingSecret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if signingSecret == "" {
				next.ServeHTTP(w, r)
				return
			}

			verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
			if err != nil {
				log.Warn("Rejected unsigned Slack request", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(io.TeeReader(r.Body, &verifier))
			if err != nil {
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if err := verifier.Ensure(); err != nil {
				log.Warn("Rejected Slack request with bad signature", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
