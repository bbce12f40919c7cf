package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/app"
	"github.com/alexanderramin/tremor/internal/db"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/repository"
	"github.com/hashicorp/go-multierror"
)

type syncService struct {
	store       SessionStore
	blobs       repository.BlobRepo
	uow         db.UnitOfWork
	maxReadings int
	now         func() time.Time
	observer    UseCaseObserver
}

// NewSyncService keeps the pending-sync id set under its own key in the blob
// store, next to (not inside) the resume slot. maxReadings <= 0 uses
// analysis.DefaultTransferReadings.
func NewSyncService(
	store SessionStore,
	blobs repository.BlobRepo,
	uow db.UnitOfWork,
	maxReadings int,
	observers ...UseCaseObserver,
) SyncService {
	if maxReadings <= 0 {
		maxReadings = analysis.DefaultTransferReadings
	}
	return &syncService{
		store:       store,
		blobs:       blobs,
		uow:         uow,
		maxReadings: maxReadings,
		now:         time.Now,
		observer:    useCaseObserverOrNoop(observers),
	}
}

func readPending(ctx context.Context, blobs repository.BlobRepo) ([]string, error) {
	var ids []string
	err := loadJSON(ctx, blobs, KeyPendingSync, &ids)
	if errors.Is(err, errCorruptBlob) {
		return nil, nil
	}
	return ids, err
}

func (s *syncService) updatePending(ctx context.Context, name string, ids []string, fn func([]string) []string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"ids": len(ids)}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBlobs := repository.NewSQLiteBlobRepo(tx)
		pending, err := readPending(ctx, txBlobs)
		if err != nil {
			return err
		}
		next := fn(pending)
		fields["pending"] = len(next)
		if next == nil {
			next = []string{}
		}
		return storeJSON(ctx, txBlobs, KeyPendingSync, next)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// MarkForSync adds ids to the pending set, keeping first-seen order and
// dropping duplicates.
func (s *syncService) MarkForSync(ctx context.Context, ids ...string) error {
	return s.updatePending(ctx, "mark-for-sync", ids, func(pending []string) []string {
		seen := idSet(pending)
		for _, id := range ids {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			pending = append(pending, id)
		}
		return pending
	})
}

func (s *syncService) MarkSynced(ctx context.Context, ids ...string) error {
	return s.updatePending(ctx, "mark-synced", ids, func(pending []string) []string {
		drop := idSet(ids)
		kept := pending[:0]
		for _, id := range pending {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

func (s *syncService) PendingIDs(ctx context.Context) []string {
	ids, err := readPending(ctx, s.blobs)
	if err != nil || ids == nil {
		return []string{}
	}
	return ids
}

// GetSessionsToSync returns the stored sessions whose ids are pending, in
// store order. Pending ids with no stored session are skipped.
func (s *syncService) GetSessionsToSync(ctx context.Context) []domain.Session {
	pending := idSet(s.PendingIDs(ctx))
	out := []domain.Session{}
	if len(pending) == 0 {
		return out
	}
	for _, session := range s.store.GetAll(ctx) {
		if pending[session.ID] {
			out = append(out, session)
		}
	}
	return out
}

// PreparePayload decimates each session's readings to the transfer cap.
// The input sessions are not modified.
func (s *syncService) PreparePayload(sessions []domain.Session) app.SyncPayload {
	out := make([]domain.Session, len(sessions))
	for i, session := range sessions {
		session.Readings = analysis.Decimate(session.Readings, s.maxReadings)
		out[i] = session
	}
	return app.SyncPayload{
		Sessions:    out,
		PreparedAt:  s.now().UnixMilli(),
		MaxReadings: s.maxReadings,
	}
}

// Cleanup deletes confirmed-synced sessions from the store and drops them
// from the pending set.
func (s *syncService) Cleanup(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.DeleteMany(ctx, ids...); err != nil {
		return err
	}
	return s.MarkSynced(ctx, ids...)
}

// Receive stores the sessions of a payload prepared on another device. Every
// session is validated first; if any fails, nothing is written and the error
// wraps ErrInvalidImport. Sessions whose id is already stored, or repeated
// within the payload, are skipped. The stored sessions are returned in
// payload order.
func (s *syncService) Receive(ctx context.Context, payload app.SyncPayload) (received []domain.Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"incoming": len(payload.Sessions)}
	defer func() {
		fields["received"] = len(received)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "receive-sync-payload",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err := validateIncoming(payload.Sessions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}

	received = []domain.Session{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBlobs := repository.NewSQLiteBlobRepo(tx)
		sessions, err := readSessions(ctx, txBlobs)
		if err != nil {
			return err
		}
		stored := make(map[string]bool, len(sessions))
		for _, session := range sessions {
			stored[session.ID] = true
		}

		var added []domain.Session
		for _, session := range payload.Sessions {
			if stored[session.ID] {
				continue
			}
			stored[session.ID] = true
			added = append(added, session)
		}
		if len(added) == 0 {
			return nil
		}
		if err := storeJSON(ctx, txBlobs, KeySessions, append(sessions, added...)); err != nil {
			return err
		}
		received = added
		return nil
	})
	if err != nil {
		received = nil
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return received, nil
}

// validateIncoming checks each session's invariants. Duplicate ids are
// allowed here; Receive keeps the first.
func validateIncoming(sessions []domain.Session) error {
	var result *multierror.Error
	for i, session := range sessions {
		if err := session.Validate(analysis.Classify); err != nil {
			result = multierror.Append(result, fmt.Errorf("session %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}
