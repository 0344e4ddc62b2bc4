// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP 介面，作為帳戶狀態機的呈現層 (presentation layer)。
// 每個 handler 僅負責：
//  1. 解析請求並組出 bank.Action
//  2. 交由 session.Session 依序套用
//  3. 回傳帳戶狀態與可用操作
//
// 商業規則拒絕一律回 200 並附 changed=false；只有請求本身不合法才回 4xx。
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bankaccount/internal/bank"
	"bankaccount/internal/metrics"
	"bankaccount/internal/session"
)

// maxBodyBytes 為請求本文上限（1 MiB）。
const maxBodyBytes = 1 << 20

// Server 為 HTTP 層核心結構：
// - Session：注入唯一帳戶的擁有者。
// - metrics：可為 nil；非 nil 時掛上 /metrics 並記錄請求。
type Server struct {
	Session *session.Session

	log     *zap.Logger
	metrics *metrics.Metrics
	origins []string
}

// Option 設定 Server。
type Option func(*Server)

// WithLogger 設定請求日誌使用的 logger。
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics 啟用 prometheus 指標。
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAllowedOrigins 設定 CORS 允許的來源；空值代表不啟用 CORS。
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer 建立新的 HTTP 伺服器。
func NewServer(sess *session.Session, opts ...Option) *Server {
	s := &Server{Session: sess, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// accountView 為 GET /account 的回應。
type accountView struct {
	SessionID string               `json:"session_id"`
	Account   bank.Account         `json:"account"`
	Actions   []session.ActionInfo `json:"actions"`
}

// dispatchRequest 對應原畫面 dispatch({type, payload})。
// Payload 省略時使用該操作的參考金額。
type dispatchRequest struct {
	Type    string `json:"type"`
	Payload *int64 `json:"payload"`
}

// dispatchResponse 為成功 dispatch 的回應。
type dispatchResponse struct {
	Account bank.Account         `json:"account"`
	Changed bool                 `json:"changed"`
	Actions []session.ActionInfo `json:"actions"`
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getAccount 處理 GET /account。
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	a := s.Session.State()
	writeJSON(w, http.StatusOK, accountView{
		SessionID: s.Session.ID.String(),
		Account:   a,
		Actions:   session.Available(a),
	})
}

// dispatchAction 處理 POST /account/actions，body 為 {"type": "...", "payload": n}。
func (s *Server) dispatchAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeErr(w, err)
		return
	}

	var (
		action bank.Action
		err    error
	)
	if req.Payload == nil {
		action, err = session.DefaultAction(req.Type)
	} else {
		action, err = bank.ParseAction(req.Type, *req.Payload)
	}
	if err != nil {
		writeDispatchErr(w, err)
		return
	}
	s.dispatch(w, r, action)
}

// dispatchShorthand 處理 POST /account/{type}[?amount=n]，對應畫面上的單一按鈕。
func (s *Server) dispatchShorthand(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "type")

	var (
		action bank.Action
		err    error
	)
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			writeErr(w, errors.New("amount must be an integer"), http.StatusBadRequest)
			return
		}
		action, err = bank.ParseAction(tag, amount)
	} else {
		action, err = session.DefaultAction(tag)
	}
	if err != nil {
		writeDispatchErr(w, err)
		return
	}
	s.dispatch(w, r, action)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, action bank.Action) {
	res, err := s.Session.Dispatch(r.Context(), action)
	if err != nil {
		writeDispatchErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dispatchResponse{
		Account: res.After,
		Changed: res.Changed,
		Actions: session.Available(res.After),
	})
}
