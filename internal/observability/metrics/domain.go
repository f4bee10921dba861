package metrics

var (
	LoginAttemptsTotal = counterVec("auth", "login_attempts_total",
		"Total number of login attempts by result", "result")

	UsersRegistered = counter("auth", "users_registered_total",
		"Total number of registered users")

	SessionTokensIssued = counter("auth", "tokens_issued_total",
		"Total number of bearer tokens issued at login")

	JWTValidationsTotal = counter("auth", "token_validations_total",
		"Total number of bearer token validations")

	JWTValidationsFailed = counterVec("auth", "token_validations_failed_total",
		"Total number of rejected bearer tokens by reason", "reason")

	PostsCreated = counter("posts", "created_total", "Total number of posts created")
	PostsUpdated = counter("posts", "updated_total", "Total number of post updates")
	PostsDeleted = counter("posts", "deleted_total", "Total number of posts deleted")

	OwnershipDenied = counterVec("posts", "ownership_denied_total",
		"Total number of post mutations rejected because the caller is not the owner", "operation")

	DomainErrorsTotal = counterVec("", "domain_errors_total",
		"Total number of domain errors by category and code", "category", "code", "status")

	CircuitBreakerState = gaugeVec("resilience", "circuit_breaker_state",
		"Circuit breaker state (0=closed, 1=open, 2=half-open)", "name")

	CircuitBreakerFailures = counterVec("resilience", "circuit_breaker_failures_total",
		"Total number of failures counted by a circuit breaker", "name")
)
