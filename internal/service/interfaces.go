package service

import (
	"context"

	"github.com/alexanderramin/tremor/internal/app"
	"github.com/alexanderramin/tremor/internal/domain"
)

// SessionStore is the durable collection of finished sessions plus the
// single resume slot. Reads degrade to empty results on failure; writes
// return errors wrapping ErrPersistence.
type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	GetAll(ctx context.Context) []domain.Session
	ListNewestFirst(ctx context.Context) []domain.Session
	GetFiltered(ctx context.Context, filters domain.HistoryFilters) []domain.Session
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids ...string) error
	ClearAll(ctx context.Context) error
	ExportJSON(ctx context.Context) (string, error)
	ImportJSON(ctx context.Context, blob string) error

	SaveCurrent(ctx context.Context, p domain.PartialSession) error
	GetCurrent(ctx context.Context) (domain.PartialSession, bool)
	ClearCurrent(ctx context.Context) error
}

// SyncService tracks which sessions still need to reach a secondary store,
// prepares bounded transfer payloads for them, and stores payloads received
// from another device.
type SyncService interface {
	MarkForSync(ctx context.Context, ids ...string) error
	MarkSynced(ctx context.Context, ids ...string) error
	PendingIDs(ctx context.Context) []string
	GetSessionsToSync(ctx context.Context) []domain.Session
	PreparePayload(sessions []domain.Session) app.SyncPayload
	Cleanup(ctx context.Context, ids ...string) error
	Receive(ctx context.Context, payload app.SyncPayload) ([]domain.Session, error)
}

// ReportService assembles the data an external report renderer consumes.
type ReportService interface {
	Build(ctx context.Context, req app.ReportRequest) (*app.ReportBundle, error)
}
