package moderation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Repository persists an audit trail of emitted punishment actions.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// RecordAction appends one punishment action to the audit log.
func (r *Repository) RecordAction(ctx context.Context, room string, a *Action) error {
	if r == nil || r.db == nil || a == nil {
		return nil
	}
	q := `INSERT INTO moderation_actions (
	    user_id, room, action, reason, zero_tolerance, created_at
	  ) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.ExecContext(ctx, q,
		a.UserID, room, a.Command, a.Reason, a.ZeroTolerance, time.Now().UTC(),
	)
	return err
}
