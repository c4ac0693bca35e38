package middleware

import (
	"encoding/json"
	"net/http"
)

// internalErrorBody はリカバリーミドルウェアが返す固定のレスポンス。
// panicの内容はログにのみ残し、レスポンスには決して含めない。
var internalErrorBody = struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}{
	Code:     "INTERNAL_ERROR",
	Message:  "内部エラーが発生しました。",
	Category: "system",
	Action:   "しばらく待ってから再度お試しください。",
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// ハンドラー層のエラー変換を通れないミドルウェア内の異常（panic等）で使う。
func WriteInternalServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(internalErrorBody)
}
