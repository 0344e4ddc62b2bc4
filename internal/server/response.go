// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式：成功回應為 JSON，錯誤回應為 {"error": "..."}。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bankaccount/internal/bank"
	"bankaccount/internal/session"
)

// writeJSON 統一輸出成功回應。
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 統一輸出錯誤回應。
func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeDispatchErr 將 dispatch 錯誤對應到 HTTP 狀態碼：
//   - 未知 Action、金額不合法 → 400
//   - 開戶金額低於最低存款、餘額溢位 → 422
//   - 請求已取消或逾時 → 408
func writeDispatchErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bank.ErrUnknownAction), errors.Is(err, session.ErrInvalidAmount):
		writeErr(w, err, http.StatusBadRequest)
	case errors.Is(err, session.ErrBelowMinimumDeposit), errors.Is(err, session.ErrAmountOverflow):
		writeErr(w, err, http.StatusUnprocessableEntity)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeErr(w, err, http.StatusRequestTimeout)
	default:
		writeErr(w, err, http.StatusInternalServerError)
	}
}

// writeDecodeErr 處理請求本文解析錯誤：超過上限 → 413，其餘 → 400。
func writeDecodeErr(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeErr(w, err, http.StatusRequestEntityTooLarge)
		return
	}
	writeErr(w, err, http.StatusBadRequest)
}
