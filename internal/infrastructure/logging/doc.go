// Package logging wraps log/slog for the service.
//
// Every entry carries service and version attributes, so log aggregation
// across the schema store, state store, and this service can tell the
// sources apart. Format, level, and destination come from the logging
// section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json for aggregation, text for a terminal
//	  output: "stdout"   # stdout, stderr
//
// Components take the *Logger (or a narrow interface over it) as a
// dependency; there is no package-level logger. Derive per-component
// loggers with With:
//
//	mirrorLog := logger.With("component", "mirror")
//
// Never log credentials: the session bearer token, the InfluxDB token, and
// MQTT passwords all pass through config and must stay out of log fields.
package logging
