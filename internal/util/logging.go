package util

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model/requestresponse"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// NewLogger : JSON-логгер с заданным уровнем, устанавливается логгером по умолчанию
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// LogError : логирует ошибку и возвращает ее обернутой в message
func LogError(message string, err error) error {
	slog.Error(message, slog.Any("error", err))
	return fmt.Errorf("%s: %w", message, err)
}

// HandleError : пишет ответ с ошибкой в формате {success:false, error, code}.
// Нетипизированные ошибки логируются и отдаются клиенту как 500 без деталей.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.Internal {
		slog.ErrorContext(requestContext(r), "внутренняя ошибка сервера", slog.Any("error", err))
		WriteJSON(w, http.StatusInternalServerError, requestresponse.ErrorResponse{
			Success: false,
			Error:   "внутренняя ошибка сервера",
			Code:    apperror.Internal.Code(),
		})
		return
	}

	WriteJSON(w, appErr.HTTPStatus(), requestresponse.ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code(),
	})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("ошибка кодирования ответа", slog.Any("error", err))
	}
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
