package handler

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model/requestresponse"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger : одна строка access-лога на запрос
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http запрос",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// RateLimit : ограничение частоты запросов с одного IP для входа, регистрации и обновления токенов
func RateLimit(cfg config.RateLimitConfig) func(next http.Handler) http.Handler {
	lmt := tollbooth.NewLimiter(cfg.RequestsPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: cfg.TTL})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessageContentType("application/json")
	lmt.SetMessage(rateLimitMessage())

	return func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	}
}

func rateLimitMessage() string {
	body, err := json.Marshal(requestresponse.ErrorResponse{
		Success: false,
		Error:   "слишком много запросов, попробуйте позже",
		Code:    apperror.RateLimited.Code(),
	})
	if err != nil {
		return "слишком много запросов"
	}
	return string(body)
}
