// Package logger provides structured logging for llmaid using zerolog.
//
// Libraries default to Nop so nothing is written unless the caller passes a
// logger in. The CLI builds one from Config or from LLMAID_LOG_* variables.
//
// # Configuration
//
//	log:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug"}, "llmaid")
//	log.WithComponent("llm").Debug("completion sent",
//	    logger.Fields(logger.FieldModel, "gpt-3.5-turbo-instruct"))
package logger
