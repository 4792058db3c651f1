// Package logger builds configured log/slog loggers with consistent
// attribute helpers.
//
// New applies functional options over production-safe defaults (JSON format,
// INFO level, stdout) and returns a plain *slog.Logger, so consumers depend
// only on the standard library interface.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithService("sessiond"),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithFormat(logger.FormatText),
//	)
//	logger.SetAsDefault(log)
//
//	log.Info("session destroyed", logger.SID(sid), logger.Backend("durable"))
//
// The attribute helpers keep key names uniform across the codebase; nil-safe
// helpers like Error return an empty Attr that slog drops silently.
package logger
