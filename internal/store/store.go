// internal/store/store.go
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Record is a stored document in map form, suitable for field-level
// sanitization before it leaves the service.
type Record = map[string]any

// ShopCredential holds one user's access token for one shop. The token is
// read back only by the financial-summary flow and is never echoed to a
// client response.
type ShopCredential struct {
	OwnerID     string
	Shop        string
	AccessToken string
	CreatedAt   time.Time
}

// Store is the document store behind the API: waitlist users plus per-user
// shop credentials.
type Store interface {
	// UpsertWaitlistUser creates a user keyed by email or, when the email is
	// already registered, updates the stored name and returns the existing
	// id with existed=true. The same email never yields two records.
	UpsertWaitlistUser(ctx context.Context, name, email, ip, userAgent string) (id string, existed bool, err error)
	// ListUsers returns all user records, newest first, unsanitized.
	ListUsers(ctx context.Context) ([]Record, error)
	DeleteUser(ctx context.Context, id string) error

	SaveShopCredential(ctx context.Context, ownerID, shop, accessToken string) error
	// GetShopCredential returns ErrNotFound when the (owner, shop) pair has
	// no saved credential.
	GetShopCredential(ctx context.Context, ownerID, shop string) (ShopCredential, error)
}
