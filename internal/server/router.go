// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊與中介層（request id、recover、CORS、請求日誌與指標）。
// 所有端點同時掛在 /api/v1 與根路徑下。
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router 建立並回傳整個 HTTP 處理鏈。
func (s *Server) Router() http.Handler {
	v1 := chi.NewRouter()

	// 健康檢查
	v1.Get("/health", s.health)

	// 帳戶：
	//   - GET  /account                → 目前狀態與可用操作
	//   - POST /account/actions        → {"type", "payload"}
	//   - POST /account/{type}         → 以參考金額（或 ?amount=）送出
	v1.Route("/account", func(r chi.Router) {
		r.Get("/", s.getAccount)
		r.Post("/actions", s.dispatchAction)
		r.Post("/{type}", s.dispatchShorthand)
	})

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	root.Use(s.observe)

	if s.metrics != nil {
		root.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	root.Mount("/api/v1", v1)
	root.Mount("/", v1)

	return root
}

// observe 記錄每個請求的日誌與指標；route 使用 chi 的路由樣板以避免高基數標籤。
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(r.Method, route, status, elapsed)
		s.log.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
