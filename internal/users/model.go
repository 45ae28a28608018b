package users

import "time"

// User represents a customer, driver, or admin account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	UserType     string    `json:"user_type"` // customer | driver | admin
	RoleID       *string   `json:"role_id,omitempty"`
	ProfilePic   string    `json:"profile_pic,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the body for POST /users/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	UserType string `json:"user_type"`
}

// LoginRequest is the body for POST /users/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthResponse is returned on register / login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
