package api

import (
	"encoding/json"

	"budgetbuddy/internal/core"
)

// Wire payloads for the remote service.
type (
	loginRequest struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}

	signupRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	authResponse struct {
		Token string           `json:"token"`
		User  core.UserProfile `json:"user"`
	}

	// createRequest carries the amount as a bare JSON number.
	createRequest struct {
		Amount   json.Number `json:"amount"`
		Category string      `json:"category,omitempty"`
		Note     string      `json:"note,omitempty"`
	}
)

func (r authResponse) session() core.Session {
	user := r.User
	return core.Session{Token: r.Token, User: &user}
}
