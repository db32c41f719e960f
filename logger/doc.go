// Package logger provides structured logging on top of zerolog.
//
// Loggers are scoped by component and carry task-level fields so every line
// emitted while a task runs can be correlated:
//
//	log := logger.New(&cfg.Logging, "scribe").WithComponent("task")
//	log.Info("stage finished", logger.Fields(logger.FieldTaskID, id, logger.FieldStage, "asr"))
//
// Credentials never go into fields; use util.MaskSecret when a key must be referenced.
package logger
