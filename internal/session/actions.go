// internal/session/actions.go
//
// 畫面層的約定：每個按鈕的固定金額與啟用條件。

package session

import "bankaccount/internal/bank"

// DefaultMinOpeningDeposit 為最低開戶存款。
const DefaultMinOpeningDeposit int64 = 500

// ReferenceAmounts 為畫面上每個按鈕送出的固定金額。
var ReferenceAmounts = map[bank.Kind]int64{
	bank.KindOpen:        500,
	bank.KindDeposit:     100,
	bank.KindWithdraw:    50,
	bank.KindRequestLoan: 5000,
	bank.KindPayLoan:     5000,
}

var labels = map[bank.Kind]string{
	bank.KindOpen:        "Open account",
	bank.KindDeposit:     "Deposit 100",
	bank.KindWithdraw:    "Withdraw 50",
	bank.KindRequestLoan: "Request a loan of 5000",
	bank.KindPayLoan:     "Pay loan",
	bank.KindClose:       "Close account",
}

// ActionInfo 描述一個可供畫面呈現的操作。
type ActionInfo struct {
	Type    bank.Kind `json:"type"`
	Label   string    `json:"label"`
	Amount  int64     `json:"amount,omitempty"`
	Enabled bool      `json:"enabled"`
}

// Available 依帳戶狀態回傳所有操作及其啟用狀態：
// 未啟用時只有 Open 可按，啟用後除 Open 以外皆可按。
func Available(a bank.Account) []ActionInfo {
	out := make([]ActionInfo, 0, len(bank.Kinds))
	for _, k := range bank.Kinds {
		enabled := a.IsActive
		if k == bank.KindOpen {
			enabled = !a.IsActive
		}
		out = append(out, ActionInfo{
			Type:    k,
			Label:   labels[k],
			Amount:  ReferenceAmounts[k],
			Enabled: enabled,
		})
	}
	return out
}

// DefaultAction 以參考金額建立 tag 對應的 Action。
func DefaultAction(tag string) (bank.Action, error) {
	return bank.ParseAction(tag, ReferenceAmounts[bank.Kind(tag)])
}
