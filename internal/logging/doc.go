// Package logging provides structured logging for sharewatch.
//
// This package wraps zap logger with convenience functions for common
// logging patterns used throughout the tool. Logging is silent by default
// so CLI output stays clean; set SHAREWATCH_LOG_LEVEL to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (scan session internals, merge results)
//   - Info: Normal operations (shares added, status transitions)
//   - Warn: Non-fatal issues (per-host enumeration failures, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Manual share added",
//	    zap.String("host", "10.0.0.5"),
//	    zap.String("share", "Media"),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
