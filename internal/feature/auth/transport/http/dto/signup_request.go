package dto

// SignupReq は/signupエンドポイントのリクエストボディを表します。
// Ginのbindingタグでバリデーションします（必須、メール形式、パスワード長）。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}
