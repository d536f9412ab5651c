package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// LoginResponse is the payload the campus backend returns on a successful login
type LoginResponse struct {
	TokenType    string `json:"tokenType" example:"Bearer"`
	ID           int64  `json:"id" example:"1"`
	Username     string `json:"username" example:"admin"`
	Role         string `json:"role" example:"Admin"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}
