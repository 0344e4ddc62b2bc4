// internal/bank/action.go
//
// Action 為封閉的 sum type：只有本套件能實作 isAction，
// 因此套件外無法新增變體。序列化邊界使用 ParseAction 將 wire tag 轉回 Action。

package bank

// Kind 為 Action 的 wire tag。
type Kind string

const (
	KindOpen        Kind = "open"
	KindDeposit     Kind = "deposit"
	KindWithdraw    Kind = "withdraw"
	KindRequestLoan Kind = "loan"
	KindPayLoan     Kind = "payLoan"
	KindClose       Kind = "close"
)

// Kinds 依畫面上按鈕順序列出所有合法的 Kind。
var Kinds = []Kind{KindOpen, KindDeposit, KindWithdraw, KindRequestLoan, KindPayLoan, KindClose}

// Action is a request to change the account state.
type Action interface {
	Kind() Kind
	isAction()
}

// Open 開戶並將餘額設為 Amount。
type Open struct{ Amount int64 }

// Deposit 存款。
type Deposit struct{ Amount int64 }

// Withdraw 提款；允許透支。
type Withdraw struct{ Amount int64 }

// RequestLoan 申請貸款，僅在沒有未清償貸款時生效。
type RequestLoan struct{ Amount int64 }

// PayLoan 清償貸款。
type PayLoan struct{ Amount int64 }

// Close 關戶，僅在餘額與貸款皆為 0 時生效。
type Close struct{}

func (Open) Kind() Kind        { return KindOpen }
func (Deposit) Kind() Kind     { return KindDeposit }
func (Withdraw) Kind() Kind    { return KindWithdraw }
func (RequestLoan) Kind() Kind { return KindRequestLoan }
func (PayLoan) Kind() Kind     { return KindPayLoan }
func (Close) Kind() Kind       { return KindClose }

func (Open) isAction()        {}
func (Deposit) isAction()     {}
func (Withdraw) isAction()    {}
func (RequestLoan) isAction() {}
func (PayLoan) isAction()     {}
func (Close) isAction()       {}

// AmountOf 回傳 Action 攜帶的金額；Close 與 nil 回傳 (0, false)。
func AmountOf(a Action) (int64, bool) {
	switch v := a.(type) {
	case Open:
		return v.Amount, true
	case Deposit:
		return v.Amount, true
	case Withdraw:
		return v.Amount, true
	case RequestLoan:
		return v.Amount, true
	case PayLoan:
		return v.Amount, true
	default:
		return 0, false
	}
}

// ParseAction 將 wire tag 與金額組成 Action。
// 不在集合內的 tag 回傳 *UnknownActionError；Close 忽略 amount。
func ParseAction(tag string, amount int64) (Action, error) {
	switch Kind(tag) {
	case KindOpen:
		return Open{Amount: amount}, nil
	case KindDeposit:
		return Deposit{Amount: amount}, nil
	case KindWithdraw:
		return Withdraw{Amount: amount}, nil
	case KindRequestLoan:
		return RequestLoan{Amount: amount}, nil
	case KindPayLoan:
		return PayLoan{Amount: amount}, nil
	case KindClose:
		return Close{}, nil
	default:
		return nil, &UnknownActionError{Tag: tag}
	}
}
