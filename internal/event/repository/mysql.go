package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"examarchive/internal/common/db"
)

const eventColumns = "id, title, description, date, location, image_url, image_public_id, created_at, updated_at"

// MySQLEventRepository persists events in MySQL.
type MySQLEventRepository struct {
	db db.Database
}

// NewMySQLEventRepository creates a MySQL-backed event repository.
func NewMySQLEventRepository(database db.Database) *MySQLEventRepository {
	return &MySQLEventRepository{db: database}
}

func (r *MySQLEventRepository) Create(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event is nil")
	}

	q := `
		INSERT INTO events (title, description, date, location, image_url, image_public_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(ctx, q,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		nullable(event.ImageURL),
		nullable(event.ImagePublicID),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *MySQLEventRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	q := "SELECT " + eventColumns + " FROM events WHERE id = ?"
	event, err := scanEvent(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *MySQLEventRepository) List(ctx context.Context, q string) ([]*Event, error) {
	listQuery := "SELECT " + eventColumns + " FROM events"
	args := []interface{}{}
	if q != "" {
		listQuery += " WHERE MATCH(title, description, location) AGAINST (? IN NATURAL LANGUAGE MODE)"
		args = append(args, q)
	}
	listQuery += " ORDER BY date DESC, id DESC"

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*Event, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *MySQLEventRepository) Update(ctx context.Context, id int64, update EventUpdate) (*Event, error) {
	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)

	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *update.Date)
	}
	if update.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *update.Location)
	}
	if update.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, nullable(*update.ImageURL))
	}
	if update.ImagePublicID != nil {
		sets = append(sets, "image_public_id = ?")
		args = append(args, nullable(*update.ImagePublicID))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	q := "UPDATE events SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if _, err := result.RowsAffected(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *MySQLEventRepository) Delete(ctx context.Context, id int64) (*Event, error) {
	event, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrEventNotFound
	}
	return event, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var event Event
	var imageURL, imagePublicID sql.NullString
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&imageURL,
		&imagePublicID,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.ImageURL = imageURL.String
	event.ImagePublicID = imagePublicID.String
	return &event, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
