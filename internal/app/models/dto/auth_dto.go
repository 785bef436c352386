package dto

// RegisterRequest carries the registration form fields
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" example:"Ana Souza"`
	Email    string `json:"email" binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// LoginRequest carries the login form fields
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresIn   int          `json:"expiresIn" example:"3600"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"Ana Souza"`
	Email string `json:"email" example:"ana@example.com"`
	Role  string `json:"role" example:"student"`
}
