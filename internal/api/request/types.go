package request

// SignupRequest is the request body for creating an account
type SignupRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"password_repeat"`
}

// LoginRequest is the request body for signing in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
