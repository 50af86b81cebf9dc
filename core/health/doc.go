// Package health provides liveness and readiness handlers.
//
//	live := health.Liveness
//	ready := health.Readiness(log,
//		opensearch.Healthcheck(osClient),
//		redis.Healthcheck(redisClient),
//	)
//
// Liveness never checks dependencies. Readiness answers 503 as soon as one
// check fails and logs the failure.
package health
