// internal/session/session.go

// Package session 持有唯一的帳戶狀態並依序套用 Action。
// 以單一互斥鎖 (sync.Mutex) 序列化所有 Dispatch，確保狀態轉換為線性順序。
// 狀態轉換本身交由 bank.Transition（純函式）計算。
package session

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bankaccount/internal/bank"
	"bankaccount/internal/metrics"
)

// Recorder 接收每次 dispatch 的結果；*metrics.Metrics 實作此介面。
type Recorder interface {
	ObserveTransition(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string) {}

// Result 為一次 Dispatch 的前後狀態。
// Changed 為 false 代表狀態沒有變化：可能是商業規則拒絕，也可能是 Action 套用後結果相同
// （例如對 {500,0,true} 再次 Open(500)）。
type Result struct {
	Before  bank.Account
	After   bank.Account
	Changed bool
}

// Session 為帳戶的唯一寫入者。
// - mu：序列化所有讀寫。
// - state：目前帳戶狀態，只在臨界區內替換。
type Session struct {
	ID uuid.UUID

	mu         sync.Mutex
	state      bank.Account
	minOpening int64
	log        *zap.Logger
	rec        Recorder
}

// Option 設定 Session。
type Option func(*Session)

// WithLogger 設定 logger；nil 時使用 zap.NewNop()。
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMinOpeningDeposit 設定最低開戶存款；0 代表不檢查。
func WithMinOpeningDeposit(amount int64) Option {
	return func(s *Session) { s.minOpening = amount }
}

// WithRecorder 設定 metrics 接收者。
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.rec = r
		}
	}
}

// New 建立處於關閉狀態的 Session。
func New(opts ...Option) *Session {
	s := &Session{
		ID:         uuid.New(),
		state:      bank.Closed(),
		minOpening: DefaultMinOpeningDeposit,
		log:        zap.NewNop(),
		rec:        nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", s.ID.String()))
	return s
}

// State 回傳目前狀態的值拷貝。
func (s *Session) State() bank.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch 檢查呼叫端約定後，於臨界區內套用 Action。
// 未知 Action 回傳 *bank.UnknownActionError，狀態不變。
func (s *Session) Dispatch(ctx context.Context, a bank.Action) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	kind := "nil"
	if a != nil {
		kind = string(a.Kind())
	}
	amount, hasAmount := bank.AmountOf(a)
	fields := []zap.Field{zap.String("action", kind)}
	if hasAmount {
		fields = append(fields, zap.Int64("amount", amount))
	}

	if err := s.checkConvention(a, amount, hasAmount); err != nil {
		s.rec.ObserveTransition(kind, metrics.OutcomeInvalid)
		s.log.Info("action refused", append(fields, zap.Error(err))...)
		return Result{}, err
	}

	s.mu.Lock()
	before := s.state
	if err := checkOverflow(before, a); err != nil {
		s.mu.Unlock()
		s.rec.ObserveTransition(kind, metrics.OutcomeInvalid)
		s.log.Info("action refused", append(fields, zap.Int64("balance", before.Balance), zap.Error(err))...)
		return Result{Before: before, After: before}, err
	}
	after, err := bank.Transition(before, a)
	if err == nil {
		s.state = after
	}
	s.mu.Unlock()

	if err != nil {
		s.rec.ObserveTransition(kind, metrics.OutcomeUnknown)
		s.log.Warn("unknown action dispatched", append(fields, zap.Error(err))...)
		return Result{Before: before, After: before}, err
	}

	res := Result{Before: before, After: after, Changed: after != before}
	fields = append(fields,
		zap.Bool("changed", res.Changed),
		zap.Int64("balance", after.Balance),
		zap.Int64("loan", after.Loan),
		zap.Bool("is_active", after.IsActive),
	)
	if res.Changed {
		s.rec.ObserveTransition(kind, metrics.OutcomeApplied)
		s.log.Debug("action applied", fields...)
	} else {
		s.rec.ObserveTransition(kind, metrics.OutcomeUnchanged)
		s.log.Info("action left state unchanged", fields...)
	}
	return res, nil
}

// checkConvention 只檢查與狀態無關的約定；狀態相關的規則全部交給 bank.Transition。
func (s *Session) checkConvention(a bank.Action, amount int64, hasAmount bool) error {
	if !hasAmount {
		return nil
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if _, ok := a.(bank.Open); ok && s.minOpening > 0 && amount < s.minOpening {
		return ErrBelowMinimumDeposit
	}
	return nil
}

// checkOverflow 在套用前檢查會使餘額超出 int64 的加法。
// 只檢查 bank.Transition 實際會執行加法的情況；未啟用或已有貸款時照常交給狀態機原樣回傳。
// 扣款不需檢查：Withdraw 需 balance > 0，PayLoan 需 balance >= amount，且 amount > 0，
// 結果不可能低於 math.MinInt64。
func checkOverflow(state bank.Account, a bank.Action) error {
	if !state.IsActive {
		return nil
	}
	var add int64
	switch v := a.(type) {
	case bank.Deposit:
		add = v.Amount
	case bank.RequestLoan:
		if state.Loan != 0 {
			return nil
		}
		add = v.Amount
	default:
		return nil
	}
	if add > 0 && state.Balance > math.MaxInt64-add {
		return ErrAmountOverflow
	}
	return nil
}

// IsConventionError 回報 err 是否為呼叫端約定錯誤。
func IsConventionError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrBelowMinimumDeposit) ||
		errors.Is(err, ErrAmountOverflow)
}
