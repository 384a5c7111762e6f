package entity

// TokenPair bundles the credentials issued on login and refresh.
type TokenPair struct {
	AccessToken  string // Signed JWT access token
	RefreshToken string // Opaque refresh token (session ID)
	ExpiresIn    int64  // Access token lifetime in seconds
}
