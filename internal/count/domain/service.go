package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Session returns the room's working ledger, hydrating it from storage
	// when the room has not been opened yet in this process.
	Session(ctx context.Context, roomID string) (*SessionView, error)
	// Hydrate discards the in-memory ledger and reloads it from storage.
	Hydrate(ctx context.Context, roomID string) (*SessionView, error)
	Adjust(ctx context.Context, req AdjustRequest) (*EntryView, error)
	SetText(ctx context.Context, req SetTextRequest) (*EntryView, error)
	// Discard drops the room's working ledger without persisting anything.
	// The next read hydrates fresh from storage.
	Discard(ctx context.Context, roomID string) error
	// Commit makes the ledger the room's new persisted truth: zero
	// quantities dropped, all prior rows replaced atomically, ledger
	// re-hydrated from storage on success.
	Commit(ctx context.Context, roomID string) (*CommitResult, error)
}

type AdjustRequest struct {
	RoomID string `json:"-"`
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"`
}

type SetTextRequest struct {
	RoomID string `json:"-"`
	ItemID string `json:"item_id"`
	Text   string `json:"text"`
}

type EntryView struct {
	ItemID        string     `json:"item_id"`
	Quantity      float64    `json:"quantity"`
	Display       string     `json:"display"`
	LastCountedAt *time.Time `json:"last_counted_at,omitempty"`
}

type SessionView struct {
	RoomID       string      `json:"room_id"`
	Entries      []EntryView `json:"entries"`
	TotalUnits   float64     `json:"total_units"`
	TotalDisplay string      `json:"total_display"`
	ItemsTouched int         `json:"items_touched"`
	HydratedAt   time.Time   `json:"hydrated_at"`
}

type CommitResult struct {
	RoomID        string       `json:"room_id"`
	RowsPersisted int          `json:"rows_persisted"`
	CommittedAt   time.Time    `json:"committed_at"`
	Session       *SessionView `json:"session"`
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidDelta        = errors.New("invalid_delta")
	ErrRoomNotFound        = errors.New("room_not_found")
	ErrNoActiveSession     = errors.New("no_active_session")
	// ErrCommitFailed marks a commit whose outcome must be treated as
	// failed/unknown and retried; it is never downgraded to "room counted
	// empty".
	ErrCommitFailed = errors.New("commit_failed")
)
