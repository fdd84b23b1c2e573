// Package logging provides structured logging for Gray Logic ChatOps.
//
// This package wraps Go's standard log/slog package so the HTTP layer, the
// interaction router, and the gateway client all log with the same shape.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//
// Never log signing secrets, bot tokens, or response URLs.
package logging
