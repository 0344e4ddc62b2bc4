// internal/server/server_test.go
//
// 本檔為 server 層的整合測試：以 httptest.Server 模擬畫面層的操作流程，
// 驗證狀態回傳、業務拒絕 (changed=false)、錯誤狀態碼、CORS 與 /metrics。
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bankaccount/internal/bank"
	"bankaccount/internal/metrics"
	"bankaccount/internal/session"
)

type dispatchResult struct {
	Account bank.Account         `json:"account"`
	Changed bool                 `json:"changed"`
	Actions []session.ActionInfo `json:"actions"`
}

// doJSON 為測試輔助函式：送出 JSON 請求並驗證狀態碼；out 非 nil 時解析回應。
func doJSON(t *testing.T, c *http.Client, method, url string, body any, wantCode int, out any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode, "%s %s", method, url)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func newTestServer(t *testing.T, opts ...Option) (*httptest.Server, *Server) {
	t.Helper()
	s := NewServer(session.New(), opts...)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, s
}

func enabled(actions []session.ActionInfo) map[bank.Kind]bool {
	out := make(map[bank.Kind]bool, len(actions))
	for _, a := range actions {
		out[a.Type] = a.Enabled
	}
	return out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]string
	doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/health", nil, http.StatusOK, &body)
	assert.Equal(t, "ok", body["status"])
	doJSON(t, ts.Client(), http.MethodGet, ts.URL+"/api/v1/health", nil, http.StatusOK, nil)
}

// TestHTTPReferenceFlow 依原畫面按鈕順序操作整個帳戶生命週期。
func TestHTTPReferenceFlow(t *testing.T) {
	ts, s := newTestServer(t)
	cli := ts.Client()

	var view struct {
		SessionID string               `json:"session_id"`
		Account   bank.Account         `json:"account"`
		Actions   []session.ActionInfo `json:"actions"`
	}
	doJSON(t, cli, http.MethodGet, ts.URL+"/account", nil, http.StatusOK, &view)
	assert.Equal(t, s.Session.ID.String(), view.SessionID)
	assert.Equal(t, bank.Closed(), view.Account)
	assert.Equal(t, map[bank.Kind]bool{
		bank.KindOpen: true, bank.KindDeposit: false, bank.KindWithdraw: false,
		bank.KindRequestLoan: false, bank.KindPayLoan: false, bank.KindClose: false,
	}, enabled(view.Actions))

	// 1️⃣ 未開戶前存款：業務拒絕，不是錯誤
	var res dispatchResult
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/actions", map[string]any{"type": "deposit", "payload": 100}, http.StatusOK, &res)
	assert.False(t, res.Changed)
	assert.Equal(t, bank.Closed(), res.Account)

	// 2️⃣ 開戶、存款、提款、貸款
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/actions", map[string]any{"type": "open", "payload": 500}, http.StatusOK, &res)
	assert.True(t, res.Changed)
	assert.False(t, enabled(res.Actions)[bank.KindOpen])
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/deposit", nil, http.StatusOK, &res)
	doJSON(t, cli, http.MethodPost, ts.URL+"/api/v1/account/withdraw", nil, http.StatusOK, &res)
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/actions", map[string]any{"type": "loan"}, http.StatusOK, &res)
	assert.Equal(t, bank.Account{Balance: 5550, Loan: 5000, IsActive: true}, res.Account)

	// 3️⃣ 第二次貸款被拒
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/loan?amount=1000", nil, http.StatusOK, &res)
	assert.False(t, res.Changed)

	// 4️⃣ 清償全額：loan 歸零但餘額不扣（原始行為）
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/payLoan", nil, http.StatusOK, &res)
	assert.Equal(t, bank.Account{Balance: 5550, Loan: 0, IsActive: true}, res.Account)

	// 5️⃣ 餘額非 0 無法關戶
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/close", nil, http.StatusOK, &res)
	assert.False(t, res.Changed)
	assert.True(t, res.Account.IsActive)

	// 6️⃣ 提光後關戶
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/withdraw?amount=5550", nil, http.StatusOK, &res)
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/close", nil, http.StatusOK, &res)
	assert.True(t, res.Changed)
	assert.Equal(t, bank.Closed(), res.Account)
	assert.Equal(t, bank.Closed(), s.Session.State())
}

func TestHTTPErrors(t *testing.T) {
	ts, s := newTestServer(t)
	cli := ts.Client()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown type", http.MethodPost, "/account/actions", map[string]any{"type": "transfer", "payload": 1}, http.StatusBadRequest},
		{"missing type", http.MethodPost, "/account/actions", map[string]any{"payload": 1}, http.StatusBadRequest},
		{"unknown shorthand", http.MethodPost, "/account/bonus", nil, http.StatusBadRequest},
		{"non-integer amount", http.MethodPost, "/account/deposit?amount=ten", nil, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/account/actions", map[string]any{"type": "deposit", "payload": 0}, http.StatusBadRequest},
		{"below minimum opening deposit", http.MethodPost, "/account/open?amount=100", nil, http.StatusUnprocessableEntity},
		{"wrong method", http.MethodGet, "/account/actions", nil, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doJSON(t, cli, tc.method, ts.URL+tc.path, tc.body, tc.want, nil)
		})
	}

	// JSON 格式錯誤 → 400
	resp, err := cli.Post(ts.URL+"/account/actions", "application/json", bytes.NewBufferString("{bad json}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/actions", map[string]any{"type": "transfer"}, http.StatusBadRequest, &body)
	assert.Equal(t, `unknown action "transfer"`, body["error"])

	// 錯誤請求皆不改變狀態
	assert.Equal(t, bank.Closed(), s.Session.State())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewServer(session.New(session.WithRecorder(m)), WithMetrics(m), WithLogger(zap.New(core)))
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/account/open", nil, http.StatusOK, nil)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(raw)
	assert.Contains(t, text, `bank_account_transitions_total{action="open",outcome="applied"} 1`)
	assert.Contains(t, text, `bank_http_requests_total{method="POST",route="/account/{type}",status="200"} 1`)

	entries := logs.FilterMessage("http request").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "/account/{type}", entries[0].ContextMap()["route"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestMetricsDisabledByDefault(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, WithAllowedOrigins([]string{"http://localhost:3000"}))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/account/actions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

// 存款使餘額超出 int64 → 422，狀態不變。
func TestHTTPBalanceOverflow(t *testing.T) {
	ts, s := newTestServer(t)
	cli := ts.Client()

	doJSON(t, cli, http.MethodPost, ts.URL+"/account/open", nil, http.StatusOK, nil)

	var body map[string]string
	doJSON(t, cli, http.MethodPost, ts.URL+"/account/actions",
		map[string]any{"type": "deposit", "payload": int64(math.MaxInt64)}, http.StatusUnprocessableEntity, &body)
	assert.Equal(t, session.ErrAmountOverflow.Error(), body["error"])

	doJSON(t, cli, http.MethodPost, ts.URL+"/account/loan?amount=9223372036854775807", nil, http.StatusUnprocessableEntity, nil)

	assert.Equal(t, bank.Account{Balance: 500, IsActive: true}, s.Session.State())
}

// 連續兩次開戶：第二次 changed=false，指標記為 unchanged。
func TestHTTPRepeatedOpenIsUnchanged(t *testing.T) {
	m := metrics.New()
	s := NewServer(session.New(session.WithRecorder(m)), WithMetrics(m))
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	var res dispatchResult
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/account/open", nil, http.StatusOK, &res)
	assert.True(t, res.Changed)
	doJSON(t, ts.Client(), http.MethodPost, ts.URL+"/account/open", nil, http.StatusOK, &res)
	assert.False(t, res.Changed)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `bank_account_transitions_total{action="open",outcome="unchanged"} 1`)
}

// 請求本文超過 1 MiB → 413。
func TestHTTPBodyTooLarge(t *testing.T) {
	s := NewServer(session.New())
	body := `{"type":"deposit","payload":100,"note":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/account/actions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, bank.Closed(), s.Session.State())
}
