// Package logger provides structured logging for the recovery engine using
// zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers. Recovery flows log with the field keys defined in
// fields.go so log lines can be joined on error and recovery ids.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("recovery")
//	log.Info("recovery succeeded", logger.RecoveryFields(id, kind, strategy))
package logger
