// internal/session/errors.go
//
// 呼叫端約定（caller convention）不成立時的錯誤。
// 與商業規則拒絕不同，這些錯誤代表請求本身不合法，session 不會呼叫狀態機。
// ErrAmountOverflow 是唯一需要比對目前狀態的約定，於臨界區內檢查。

package session

import "errors"

var (
	// ErrInvalidAmount 代表金額 <= 0。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrInvalidAmount = errors.New("amount must be > 0")

	// ErrBelowMinimumDeposit 代表開戶金額低於最低開戶存款。
	// 對應 HTTP 狀態碼 422 Unprocessable Entity。
	ErrBelowMinimumDeposit = errors.New("opening deposit below minimum")

	// ErrAmountOverflow 代表套用後餘額會超出 int64 範圍。
	// 對應 HTTP 狀態碼 422 Unprocessable Entity。
	ErrAmountOverflow = errors.New("amount would overflow balance")
)
