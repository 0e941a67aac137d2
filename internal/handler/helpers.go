package handler

import (
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/model/requestresponse"
	"booking-server/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

var validate = validator.New()

// decodeValidBody : разбор JSON и проверка тегов validate
func decodeValidBody[B any](r *http.Request) (B, error) {
	var body B
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, apperror.Wrap(apperror.Validation, "некорректный JSON", err)
	}
	if err := validate.Struct(body); err != nil {
		return body, validationError(err)
	}
	return body, nil
}

// decodeOptionalBody : пустое тело не ошибка
func decodeOptionalBody[B any](r *http.Request) (B, error) {
	var body B
	if r.Body == nil {
		return body, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return body, apperror.Wrap(apperror.Validation, "некорректный JSON", err)
	}
	return body, nil
}

func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return apperror.Wrap(apperror.Validation, "некорректные данные запроса", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return apperror.New(apperror.Validation, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", field)
	case "email":
		return fmt.Sprintf("поле %s должно содержать корректный email", field)
	case "min":
		return fmt.Sprintf("поле %s: минимальная длина %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("поле %s: максимальная длина %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("поле %s должно быть UUID", field)
	case "oneof":
		return fmt.Sprintf("поле %s должно быть одним из: %s", field, fe.Param())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", field, fe.Tag())
	}
}

// urlID : идентификатор из пути, не UUID отвечаем как отсутствующий ресурс
func urlID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperror.Wrap(apperror.NotFound, "ресурс не найден", err)
	}
	return id.String(), nil
}

func sendSuccess(w http.ResponseWriter, status int, data any, message string) {
	util.WriteJSON(w, status, requestresponse.SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// clientInfo : IP уже нормализован middleware.RealIP
func clientInfo(r *http.Request) model.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return model.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}

// pagination : limit и offset из query, limit ограничен maxLimit
func pagination(r *http.Request) (int, int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
