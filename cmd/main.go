package main

import (
	"booking-server/config"
	"booking-server/internal/handler"
	"booking-server/internal/metrics"
	"booking-server/internal/model"
	"booking-server/internal/repository"
	"booking-server/internal/security"
	"booking-server/internal/service"
	"booking-server/internal/util"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("не удалось загрузить .env", slog.Any("error", err))
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("ошибка загрузки конфигурации", slog.Any("error", err))
		os.Exit(1)
	}
	util.NewLogger(cfg.Log.Level)

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		slog.Error("не удалось подключиться к БД", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("ошибка при закрытии БД", slog.Any("error", err))
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		slog.Error("ошибка подключения к Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("ошибка при закрытии Redis", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics := metrics.New(registry)

	now := time.Now

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	permissionRepo := repository.NewPermissionRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(db)
	revocationCache := repository.NewRevocationCacheRepository(redisClient)

	jwtService := security.NewJWTService(&cfg.JWT)
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	ledger := service.NewRefreshLedger(refreshRepo, cfg.JWT.RefreshTokenTTL, now)
	revocations := service.NewRevocationList(blacklistRepo, revocationCache, now)
	lockout := service.NewLockoutPolicy(userRepo, cfg.Lockout, authMetrics, now)

	userService := service.NewUserService(userRepo, roleRepo, hasher, ledger, cfg.Auth.DefaultRole, now)
	authService := service.NewAuthenticationService(
		userRepo, userService, jwtService, hasher, ledger, revocations, lockout, authMetrics, now,
	)
	authorizer := service.NewAuthorizer(roleRepo, permissionRepo, authMetrics)
	roleService := service.NewRoleService(roleRepo, permissionRepo, userRepo)

	pruner := service.NewPruner(ledger, revocations, cfg.Maintenance, authMetrics, now)
	go pruner.Run(ctx)

	authHandler := handler.NewAuthenticationHandler(authService, cfg.CSRF)
	rbacHandler := handler.NewRBACHandler(roleService)
	userHandler := handler.NewUserHandler(userService)

	srv, router := config.SetupServer(cfg.Server)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(handler.RequestLogger)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", healthCheck(db, redisClient))

	router.Route("/api", func(r chi.Router) {
		r.Use(security.CSRF(cfg.CSRF))

		setupAuthRoutes(r, authHandler, authService, cfg)
		setupRBACRoutes(r, rbacHandler, authService, authorizer)
		setupUserRoutes(r, userHandler, authService, authorizer)
	})

	runServer(ctx, srv, cfg.Server.ShutdownTimeout)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, resolver security.UserResolver, cfg *config.AppConfig) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/csrf-token", h.CSRFToken)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(handler.RateLimit(cfg.RateLimit))
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(security.Authenticate(resolver))
			r.Get("/me", h.Me)
			r.Post("/logout-all", h.LogoutAll)
			r.Patch("/change-password", h.ChangePassword)
		})
	})
}

func setupRBACRoutes(r chi.Router, h *handler.RBACHandler, resolver security.UserResolver, checker security.AccessChecker) {
	can := func(resource string, action model.Action) func(http.Handler) http.Handler {
		return security.RequirePermission(checker, resource, action)
	}

	r.Route("/roles", func(r chi.Router) {
		r.Use(security.Authenticate(resolver))

		r.With(can("roles", model.ActionRead)).Get("/", h.ListRoles)
		r.With(can("roles", model.ActionCreate)).Post("/", h.CreateRole)
		r.With(can("users", model.ActionManage)).Post("/assign", h.AssignRole)
		r.With(can("users", model.ActionManage)).Post("/remove", h.RemoveRole)
		r.With(can("users", model.ActionRead)).Get("/user/{userId}", h.GetUserRoles)
		r.With(can("roles", model.ActionRead)).Get("/{id}", h.GetRole)
		r.With(can("roles", model.ActionUpdate)).Put("/{id}", h.UpdateRole)
		r.With(can("roles", model.ActionDelete)).Delete("/{id}", h.DeleteRole)
		r.With(can("roles", model.ActionRead)).Get("/{id}/users", h.GetRoleUsers)
	})

	r.Route("/permissions", func(r chi.Router) {
		r.Use(security.Authenticate(resolver))

		r.With(can("permissions", model.ActionRead)).Get("/", h.ListPermissions)
		r.With(can("permissions", model.ActionCreate)).Post("/", h.CreatePermission)
		r.With(can("roles", model.ActionManage)).Post("/assign", h.AssignPermission)
		r.With(can("roles", model.ActionManage)).Post("/remove", h.RemovePermission)
		r.With(can("permissions", model.ActionRead)).Get("/{id}", h.GetPermission)
		r.With(can("permissions", model.ActionUpdate)).Put("/{id}", h.UpdatePermission)
		r.With(can("permissions", model.ActionDelete)).Delete("/{id}", h.DeletePermission)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, resolver security.UserResolver, checker security.AccessChecker) {
	r.Route("/users", func(r chi.Router) {
		r.Use(security.Authenticate(resolver))
		r.Use(security.RequireRole(checker, "admin"))
		r.Delete("/{id}", h.DeleteUser)
	})
}

func healthCheck(db *config.Database, redisClient *config.RedisClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok", "redis": "ok"}
		code := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := redisClient.Client.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}

		util.WriteJSON(w, code, status)
	}
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) {
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("сервер запущен", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ошибка работы сервера", slog.Any("error", err))
		}
	case sig := <-signalChannel:
		slog.Info("получен сигнал остановки работы сервера", slog.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		slog.Error("ошибка при остановке сервера", slog.Any("error", err))
	} else {
		slog.Info("сервер успешно остановлен")
	}
}
