// Package log provides a simple, leveled logging interface for the docchat
// packages.
//
// The knowledge graph loader, the vector index and the chat orchestrator all
// report diagnostics (load counts, ingestion progress, per-query failures)
// through the Logger interface defined here, so applications can route them
// to any backend.
//
// # Log Levels
//
// Five levels, in order of increasing severity:
//
//   - LogLevelDebug: detailed debugging information
//   - LogLevelInfo: general informational messages about normal operation
//   - LogLevelWarn: warnings for degraded but recoverable situations
//     (for example a missing knowledge graph file)
//   - LogLevelError: failures that need attention
//   - LogLevelNone: disables all logging output
//
// # Usage
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	logger.Info("indexed %d chunks", n)
//	logger.Warn("knowledge graph not found at %s", path)
//
// A package-level default logger is available for code that does not carry a
// logger of its own:
//
//	log.SetLogLevel(log.LogLevelDebug)
//	log.Debug("query embedding took %v", elapsed)
//
// # golog Integration
//
// For users who prefer github.com/kataras/golog, a minimal wrapper is
// provided:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[docchat] ")
//	logger := log.NewGologLogger(glogger)
//	logger.Info("chatbot ready")
//
// The wrapper respects this package's log levels while using golog's
// formatting and output handling.
package log
