package httpadapter

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// RequestLogger logs every handled request
type RequestLogger struct {
	log *slog.Logger
}

func NewRequestLogger(log *slog.Logger) *RequestLogger {
	return &RequestLogger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

func (l *RequestLogger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		method := ctx.Method()
		path := ctx.URL().Path

		next(ctx)

		l.log.Info("HTTP request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", ctx.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote_addr", ctx.RemoteAddr()),
		)
	}
}
