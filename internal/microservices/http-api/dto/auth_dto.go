package dto

// Data Transfer Objects for the signup and token endpoints. Fields are not
// bound with `required` here: the authenticator checks them in a fixed order.

// SignupRequest: payload for POST /auth/signup
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupResponse echoes the pair the code was sent for
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// TokenResponse: the issued pair
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshTokenRequest: payload for rotating or revoking a refresh token
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// SignupFields is the validated form of a signup attempt for a new username.
type SignupFields struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,max=254,email"`
}
