package types

import "strings"

// LoginRequest is the request body of the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"pwd"`
}

// Validate checks that the request is valid and ready for processing.
func (r *LoginRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return LoginFail()
	}
	return nil
}

// CreateTicketRequest is the request body for creating a ticket.
type CreateTicketRequest struct {
	Title string `json:"title"`
}

const maxTitleLength = 256

// Validate checks that the request is valid and ready for processing.
func (r *CreateTicketRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return InvalidParams("ticket title must not be empty")
	}
	if len(r.Title) > maxTitleLength {
		return InvalidParams("ticket title is too long")
	}
	return nil
}
