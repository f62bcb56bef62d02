package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"checkout/pkg/logger"

	"github.com/gorilla/handlers"
)

type handlerLogger interface {
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Middleware turns a handler panic into a 500 and a structured log entry.
func Middleware(log handlerLogger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(panicLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)
}

type panicLogger struct {
	log handlerLogger
}

func (p panicLogger) Println(v ...interface{}) {
	p.log.With(
		logger.NewField("recover", fmt.Sprint(v...)),
		logger.NewField("stack", string(debug.Stack())),
	).Error("http handler panic")
}
