package handler

import (
	"time"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// HeaderRefreshToken carries the refresh token next to the Authorization header.
const HeaderRefreshToken = "Refresh-Token"

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type reauthenticationRequest struct {
	AccessToken  string `json:"accessToken"  validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type actionRequest struct {
	Email string `json:"email" validate:"required,email"`
	Kind  string `json:"kind"  validate:"required,oneof=verification unlock enable"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Verified  bool      `json:"verified"`
	Enabled   bool      `json:"enabled"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"created_at"`
}

type identityResponse struct {
	Account     accountResponse `json:"account"`
	Authorities []string        `json:"authorities"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the envelope rendered by the HTTP error handler.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Roles:     a.Roles,
		Verified:  a.Verified,
		Enabled:   a.Enabled,
		Locked:    a.Locked,
		CreatedAt: a.CreatedAt,
	}
}
