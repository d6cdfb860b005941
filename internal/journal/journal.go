// Package journal defines persistence contracts for roll history.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/Taroc0/draw-steel/internal/rules/powerroll"
)

var (
	// ErrNotFound indicates a requested roll record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a roll record with the same id exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Record stores one resolved power roll.
type Record struct {
	ID       string
	UserID   string
	Type     powerroll.Type
	Formula  string
	Flavor   string
	Total    int
	Tier     powerroll.Tier
	NetBoon  int
	Critical *bool
	Nat20    *bool
	Private  bool
	RolledAt time.Time
}

// Page stores one page of roll records.
type Page struct {
	Records       []Record
	NextPageToken string
}

// Store persists roll records.
type Store interface {
	AppendRoll(ctx context.Context, record Record) error
	GetRoll(ctx context.Context, id string) (Record, error)
	ListRolls(ctx context.Context, userID string, pageSize int, pageToken string) (Page, error)
}
