// internal/bank/transition.go

package bank

// Transition 依目前狀態與 Action 計算下一個狀態。
// state 以值傳入，函式不會修改呼叫端持有的狀態。
//
// 除 Open 外，帳戶未啟用時一律原樣回傳；各 Action 的前置條件不成立時同樣原樣回傳。
// 唯一的錯誤是未知 Action（含 nil），回傳 *UnknownActionError。
func Transition(state Account, action Action) (Account, error) {
	if action == nil {
		return state, &UnknownActionError{}
	}
	if _, ok := action.(Open); !ok && !state.IsActive {
		if !isKnown(action) {
			return state, &UnknownActionError{Tag: string(action.Kind())}
		}
		return state, nil
	}

	switch a := action.(type) {
	case Open:
		state.IsActive = true
		state.Balance = a.Amount
	case Deposit:
		state.Balance += a.Amount
	case Withdraw:
		if state.Balance > 0 {
			state.Balance -= a.Amount
		}
	case RequestLoan:
		if state.Loan == 0 {
			state.Loan = a.Amount
			state.Balance += a.Amount
		}
	case PayLoan:
		// loan 無條件歸零，只有扣款受條件限制（與原始行為一致）。
		if state.Balance >= a.Amount && state.Loan > a.Amount {
			state.Balance -= a.Amount
		}
		state.Loan = 0
	case Close:
		if state.Loan == 0 && state.Balance == 0 {
			return Closed(), nil
		}
	default:
		return state, &UnknownActionError{Tag: string(action.Kind())}
	}
	return state, nil
}

func isKnown(a Action) bool {
	switch a.(type) {
	case Open, Deposit, Withdraw, RequestLoan, PayLoan, Close:
		return true
	}
	return false
}
