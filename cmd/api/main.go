package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/app"
)

// api serves the storefront and admin HTTP API without the event worker.
// Use `luxe start --with-worker` to run both in one process.
func main() {
	fx.New(
		app.HTTP,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
	).Run()
}
