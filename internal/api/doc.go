// Package api implements the HTTP REST API and WebSocket server for TwinScale Core.
//
// This package provides:
//   - REST endpoints for tenant selection, Thing CRUD, and hybrid search
//   - WebSocket hub for real-time Thing state broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between UI-level callers and the dual-store
// orchestration layer. Create/update/delete operations flow through the
// orchestrator, which mirrors them into both stores; live state flows back
// over MQTT and is broadcast to WebSocket clients by the mirror.
//
// # Graceful Degradation
//
// The server operates without MQTT — reads, writes, and search work, only
// live WebSocket state updates stop. This enables testing and partial
// operation.
package api
