// internal/bank/errors.go
//
// 本檔定義狀態機唯一的錯誤類別：未知的 Action。
// 商業規則不成立（未開戶、已有貸款、餘額不足等）不是錯誤，Transition 直接回傳原狀態。

package bank

import (
	"errors"
	"fmt"
)

// ErrUnknownAction 供 errors.Is 比對使用。
var ErrUnknownAction = errors.New("unknown action")

// UnknownActionError 代表呼叫端送入不在封閉集合內的 Action。
// Tag 為原始標籤（來自序列化邊界）；nil Action 時為空字串。
type UnknownActionError struct {
	Tag string
}

func (e *UnknownActionError) Error() string {
	if e.Tag == "" {
		return ErrUnknownAction.Error()
	}
	return fmt.Sprintf("%s %q", ErrUnknownAction.Error(), e.Tag)
}

// Is 讓 errors.Is(err, ErrUnknownAction) 成立。
func (e *UnknownActionError) Is(target error) bool {
	return target == ErrUnknownAction
}
