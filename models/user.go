package models

// User is an account in the Usuarios table. PasswordHash holds a
// bcrypt digest; legacy rows may still contain a plaintext value.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"user"`
	Email        string `json:"email"`
	PasswordHash string `json:"psswd"`
}

// PublicUser is the representation returned to API clients.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"user"`
	Email    string `json:"email"`
}

// Public strips the credential field for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// CreateUserRequest is the payload for POST /users.
type CreateUserRequest struct {
	Username string `json:"user" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"psswd"`
}

// UpdateUserRequest is the payload for PATCH /users/:id.
type UpdateUserRequest struct {
	Username *string `json:"user"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"psswd"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"user" binding:"required"`
	Password string `json:"psswd" binding:"required"`
}

// TokenResponse is returned on a successful login.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *PublicUser `json:"user,omitempty"`
}

// PasswordResetRequest asks for a reset token to be mailed out.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirm redeems a reset token for a new password.
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// PasswordResetResponse acknowledges a reset request.
type PasswordResetResponse struct {
	Message string `json:"message"`
}
