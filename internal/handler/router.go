package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/usersvc/internal/metrics"
	"github.com/hitoshi/usersvc/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier

	// メトリクス
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer

	// サービス
	AuthService         AuthServiceInterface
	RegistrationService RegistrationServiceInterface
	UserService         UserServiceInterface

	// ヘルスチェック
	HealthChecks map[string]CheckFunc
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → Logging → Auth
//
// 認証の要否はAuthミドルウェアの免除パスと各ハンドラーの認可判断で決まる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))

	authHandler := NewAuthHandler(deps.AuthService, deps.RegistrationService, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService)
	healthHandler := NewHealthHandler(deps.HealthChecks)

	// 認証
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/validate", authHandler.Validate)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/test", authHandler.Test)
	})

	// ユーザー管理
	r.Route("/api/users", func(r chi.Router) {
		// 登録はゲートウェイ互換のため認証側と同じハンドラーを公開する
		r.Post("/register", authHandler.Register)

		r.Get("/", userHandler.List)
		r.Get("/me", userHandler.Me)
		r.Get("/search", userHandler.Search)
		r.Get("/stats", userHandler.Stats)
		r.Get("/role/{role}", userHandler.ListByRole)
		r.Get("/internal/{id}", userHandler.GetInternal)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
			r.Put("/role", userHandler.UpdateRole)
			r.Delete("/", userHandler.Delete)
		})
	})

	// 運用エンドポイント
	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	return r
}
