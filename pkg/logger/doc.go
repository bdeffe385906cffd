// Package logger builds configured log/slog loggers for the gateway.
//
// Production mode emits JSON at info level for log aggregation; development
// mode emits human-readable text at debug level. Context extractors let
// request-scoped values such as the request ID flow into every log record
// without threading attributes through call sites.
package logger
