package types

import "time"

// LoginResponse is the response body of a successful login.
type LoginResponse struct {
	Result LoginResult `json:"result"`
}

// LoginResult reports the login status.
type LoginResult struct {
	Success bool `json:"success"`
}

// Ticket is the JSON representation of a ticket.
type Ticket struct {
	ID        uint64    `json:"id"`
	CreatorID uint64    `json:"cid"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketsResponse is the response body of the ticket listing endpoint.
type TicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

// WhoAmIResponse is the response body of the identity endpoint.
type WhoAmIResponse struct {
	UserID uint64 `json:"user_id"`
}
