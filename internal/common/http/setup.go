package http

import (
	"net/http"

	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
	"github.com/AlibekovAA/bloglist/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
)

// BuildBaseHandler wraps the route mux with the shared middleware chain.
// Outermost first: security headers, trace id, panic recovery, body limit,
// metrics.
func BuildBaseHandler(log *logger.Logger, mux http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		SecurityHeadersMiddleware(""),
		TraceIDMiddleware,
		RecoveryMiddleware(log),
		MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize),
		httpmetrics.New().Wrap,
	}

	h := mux
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}
