package service

import "github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"

func incrementPostsCreated() {
	metrics.PostsCreated.Inc()
}

func incrementPostsUpdated() {
	metrics.PostsUpdated.Inc()
}

func incrementPostsDeleted() {
	metrics.PostsDeleted.Inc()
}

func recordOwnershipDenied(operation string) {
	metrics.OwnershipDenied.WithLabelValues(operation).Inc()
}
