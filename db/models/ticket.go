package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.hackfix.me/ticketd/db/types"
)

// Ticket is a support ticket created by an authenticated user.
type Ticket struct {
	ID        uint64
	CreatedAt time.Time
	CreatorID uint64
	Title     string
}

// Save stores a new ticket in the database.
func (t *Ticket) Save(ctx context.Context, d types.Querier) error {
	if t.CreatorID == 0 {
		return types.InvalidInputError{Msg: "ticket creator ID must be set"}
	}
	if t.Title == "" {
		return types.InvalidInputError{Msg: "ticket title must not be empty"}
	}

	timeNow := d.TimeNow().UTC()
	res, err := d.ExecContext(ctx,
		`INSERT INTO tickets (id, created_at, creator_id, title)
		VALUES (NULL, ?, ?, ?)`, timeNow, t.CreatorID, t.Title)
	if err != nil {
		return fmt.Errorf("failed saving ticket: %w", err)
	}

	t.ID, err = lastInsertID(res)
	if err != nil {
		return err
	}
	t.CreatedAt = timeNow

	return nil
}

// Load the ticket data from the database. The ticket ID must be set for the
// lookup.
func (t *Ticket) Load(ctx context.Context, d types.Querier) error {
	if t.ID == 0 {
		return types.InvalidInputError{Msg: "ticket ID must be set"}
	}

	tickets, err := Tickets(ctx, d, types.NewFilter("t.id = ?", t.ID))
	if err != nil {
		return err
	}

	if len(tickets) == 0 {
		return types.NoResultError{ModelName: "ticket", ID: t.ID}
	}
	if len(tickets) > 1 {
		return types.IntegrityError{Msg: fmt.Sprintf("found %d tickets with ID %d", len(tickets), t.ID)}
	}
	*t = *tickets[0]

	return nil
}

// Delete removes the ticket from the database, and loads the data of the
// deleted record. It returns a NoResultError if the ticket doesn't exist.
func (t *Ticket) Delete(ctx context.Context, d types.Querier) error {
	if t.ID == 0 {
		return types.InvalidInputError{Msg: "ticket ID must be set"}
	}

	row := d.QueryRowContext(ctx,
		`DELETE FROM tickets WHERE id = ?
		RETURNING id, created_at, creator_id, title`, t.ID)

	var deleted Ticket
	err := row.Scan(&deleted.ID, &deleted.CreatedAt, &deleted.CreatorID, &deleted.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NoResultError{ModelName: "ticket", ID: t.ID}
	}
	if err != nil {
		return types.ScanError{ModelName: "ticket", Err: err}
	}
	*t = deleted

	return nil
}

// Tickets returns tickets from the database, ordered by ID. An optional filter
// can be passed to limit the results.
func Tickets(ctx context.Context, d types.Querier, filter *types.Filter) (tickets []*Ticket, rerr error) {
	query := `SELECT t.id, t.created_at, t.creator_id, t.title
		FROM tickets t
		WHERE %s
		ORDER BY t.id ASC`

	where := "1=1"
	args := []any{}
	if filter != nil {
		where = filter.Where
		args = filter.Args
	}
	query = fmt.Sprintf(query, where)
	if filter != nil && filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "tickets", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing tickets rows: %w", err)
		}
	}()

	tickets = make([]*Ticket, 0)
	for rows.Next() {
		var t Ticket
		if err = rows.Scan(&t.ID, &t.CreatedAt, &t.CreatorID, &t.Title); err != nil {
			return nil, types.ScanError{ModelName: "ticket", Err: err}
		}
		tickets = append(tickets, &t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over tickets rows: %w", err)
	}

	return tickets, nil
}
