package service

import (
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

func recordLoginAttempt(result string) {
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
}

func incrementUsersRegistered() {
	metrics.UsersRegistered.Inc()
}

func incrementSessionTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}
