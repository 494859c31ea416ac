package authapi

// registerRequest is the POST /auth/register body.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerData is the success payload of /auth/register.
type registerData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// loginData is the success payload of /auth/login.
type loginData struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
}
