package app

import "github.com/alexanderramin/tremor/internal/domain"

// SyncPayload is the transfer unit for a secondary device or store. Each
// session's readings are already decimated.
type SyncPayload struct {
	Sessions    []domain.Session `json:"sessions"`
	PreparedAt  int64            `json:"preparedAt"`
	MaxReadings int              `json:"maxReadings"`
}
