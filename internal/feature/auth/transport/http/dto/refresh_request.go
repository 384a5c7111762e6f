package dto

// RefreshReq は/refreshと/logoutエンドポイントのリクエストボディを表します。
type RefreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
