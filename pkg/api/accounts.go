package api

import "github.com/google/uuid"

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string    `json:"token"`
	UserId uuid.UUID `json:"user_id"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
