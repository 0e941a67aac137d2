package security

import (
	"booking-server/config"
	"booking-server/internal/apperror"
	"booking-server/internal/model"
	"booking-server/internal/util"
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Principal : аутентифицированный пользователь текущего запроса
type Principal struct {
	User        *model.User
	Claims      *Claims
	AccessToken string
}

// UserResolver : проверяет access-токен и возвращает его владельца
type UserResolver interface {
	GetUserFromToken(ctx context.Context, token string) (*model.User, *Claims, error)
}

type AccessChecker interface {
	Authorize(ctx context.Context, userID, resource string, action model.Action) error
	AuthorizeAnyRole(ctx context.Context, userID string, roleNames ...string) error
}

// Authenticate : требует валидный Bearer-токен, кладет Principal в контекст
func Authenticate(resolver UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			user, claims, err := resolver.GetUserFromToken(r.Context(), token)
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			principal := &Principal{User: user, Claims: claims, AccessToken: token}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePermission : доступ только при наличии права resource.action (или resource.manage)
func RequirePermission(checker AccessChecker, resource string, action model.Action) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			if err := checker.Authorize(r.Context(), principal.User.ID, resource, action); err != nil {
				util.HandleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(checker AccessChecker, roleNames ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := PrincipalFromContext(r.Context())
			if err != nil {
				util.HandleError(w, r, err)
				return
			}

			if err := checker.AuthorizeAnyRole(r.Context(), principal.User.ID, roleNames...); err != nil {
				util.HandleError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CSRF : для изменяющих методов требует заголовок со статическим секретом
func CSRF(cfg config.CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(cfg.HeaderName)
			if token == "" {
				util.HandleError(w, r, apperror.New(apperror.CSRFMissing, "CSRF-токен не передан"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Secret)) != 1 {
				util.HandleError(w, r, apperror.New(apperror.CSRFInvalid, "неверный CSRF-токен"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken : достает токен из заголовка Authorization
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperror.New(apperror.TokenMissing, "токен доступа не передан")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", apperror.New(apperror.TokenInvalid, "неверный формат заголовка Authorization")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", apperror.New(apperror.TokenMissing, "токен доступа не передан")
	}
	return token, nil
}

func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, UserContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (*Principal, error) {
	principal, ok := ctx.Value(UserContextKey).(*Principal)
	if !ok || principal == nil || principal.User == nil {
		return nil, apperror.New(apperror.Unauthorized, "пользователь не авторизован")
	}
	return principal, nil
}
