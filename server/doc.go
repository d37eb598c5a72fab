// Package server is the Gin HTTP front of the workout service.
//
// Routes:
//
//   - GET /health: aggregated component health, 503 when a component is down
//   - GET /alive: liveness probe
//   - POST /api/workouts: save a workout, recovering from classified failures
//   - GET /api/workouts/:id: load a workout owned by the caller
//   - GET /api/recovery/stats: recovery manager statistics
//
// Every error response is the client-safe rendering of a classified
// TypedError: user-facing text, kind, severity and the status recommended
// for the kind. Middleware (server/middleware) adds panic recovery, request
// ids, request logging, HS256 bearer authentication and per-user rate
// limiting.
package server
