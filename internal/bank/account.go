// internal/bank/account.go

// Package bank 定義單一帳戶的核心狀態機：Account 狀態、封閉的 Action 集合與 Transition。
// 本套件不含任何 HTTP、日誌或鎖，所有函式皆為純函式。
package bank

// Account represents the state of the single bank account.
type Account struct {
	Balance  int64 `json:"balance"`
	Loan     int64 `json:"loan"`
	IsActive bool  `json:"isActive"`
}

// Closed 回傳初始（亦為關閉後）的帳戶狀態 {0, 0, false}。
func Closed() Account {
	return Account{}
}
