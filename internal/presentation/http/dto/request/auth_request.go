package request

// LoginRequest represents a terminal login request
type LoginRequest struct {
	Code   string `json:"code" binding:"required,min=2,max=64"`
	Secret string `json:"secret" binding:"required,min=6"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
