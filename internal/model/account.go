package model

import "time"

// LinkedAccount is a bank connection established through Plaid Link.
// The sync cursor tracks incremental transactions/sync progress.
type LinkedAccount struct {
	LastSyncedAt    time.Time `json:"last_synced_at"`
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ItemID          string    `json:"item_id"`
	AccessToken     string    `json:"-"`
	InstitutionName string    `json:"institution_name"`
	SyncCursor      string    `json:"sync_cursor"`
}
