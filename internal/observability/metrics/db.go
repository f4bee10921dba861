package metrics

var (
	DBPoolAcquiredConnections = gauge("db", "pool_acquired_connections", "Number of acquired database connections")
	DBPoolIdleConnections     = gauge("db", "pool_idle_connections", "Number of idle database connections")
	DBPoolMaxConnections      = gauge("db", "pool_max_connections", "Maximum number of database connections")
	DBPoolTotalConnections    = gauge("db", "pool_total_connections", "Total number of database connections")

	DBQueryDurationSeconds = histogramVec("db", "query_duration_seconds",
		"Duration of database queries in seconds",
		[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		"operation", "table")

	DBQueryErrors = counterVec("db", "query_errors_total",
		"Total number of database query errors", "operation", "table", "error_type")

	DBTransactionsTotal = counterVec("db", "transactions_total",
		"Total number of database transactions by outcome", "operation", "outcome")

	DBRetriesTotal = counterVec("db", "retries_total",
		"Total number of retried read queries", "operation")
)
