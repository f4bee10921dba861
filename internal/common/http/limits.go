package http

import (
	"errors"
	"net/http"

	"github.com/AlibekovAA/bloglist/backend/internal/common/constants"
)

// MaxRequestSizeMiddleware rejects bodies whose declared length exceeds
// maxBytes and caps the rest while they are read.
func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeTooLarge(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// WriteDecodeError answers a failed DecodeJSON: 413 when the body hit the
// size cap, 400 INVALID_JSON otherwise.
func WriteDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeTooLarge(w, r)
		return
	}
	WriteErrorEnvelope(w, http.StatusBadRequest, CodeInvalidJSON, "invalid json", nil, TraceIDFromContext(r.Context()))
}

func writeTooLarge(w http.ResponseWriter, r *http.Request) {
	WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
}
