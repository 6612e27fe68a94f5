package dto

// SignInRequest carries the identity claims of a user signed in with the
// external identity provider.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"max=200"`
	UID      string `json:"uid" validate:"max=128"`
	PhotoURL string `json:"photoURL" validate:"max=2048"`
}

type StatusResponse struct {
	Status bool `json:"status"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Driver    string `json:"driver"`
}
