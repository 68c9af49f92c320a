// Package models defines the client-side payload types. Most resources of
// the remote API are opaque to the client and travel as Record.
package models

// Company is a tenant. Slug scopes almost every API path.
type Company struct {
	Slug string `json:"slug"`
	Name string `json:"name,omitempty"`
}

// Station is an operational location within a company.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
