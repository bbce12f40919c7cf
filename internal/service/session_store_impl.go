package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/tremor/internal/analysis"
	"github.com/alexanderramin/tremor/internal/db"
	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/repository"
	"github.com/hashicorp/go-multierror"
)

type sessionStore struct {
	blobs    repository.BlobRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewSessionStore builds the session store on a blob repo. Read-modify-write
// cycles run inside uow so the read and the write share one transaction.
func NewSessionStore(blobs repository.BlobRepo, uow db.UnitOfWork, observers ...UseCaseObserver) SessionStore {
	return &sessionStore{
		blobs:    blobs,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *sessionStore) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}

// readSessions loads the collection. A corrupt blob reads as empty so that a
// later write can replace it.
func readSessions(ctx context.Context, blobs repository.BlobRepo) ([]domain.Session, error) {
	var sessions []domain.Session
	err := loadJSON(ctx, blobs, KeySessions, &sessions)
	if errors.Is(err, errCorruptBlob) {
		return nil, nil
	}
	return sessions, err
}

// mutate runs a read-modify-write of the session collection in one transaction.
func (s *sessionStore) mutate(ctx context.Context, fn func([]domain.Session) ([]domain.Session, error)) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBlobs := repository.NewSQLiteBlobRepo(tx)
		sessions, err := readSessions(ctx, txBlobs)
		if err != nil {
			return err
		}
		next, err := fn(sessions)
		if err != nil {
			return err
		}
		if next == nil {
			next = []domain.Session{}
		}
		return storeJSON(ctx, txBlobs, KeySessions, next)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *sessionStore) Save(ctx context.Context, session domain.Session) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "save-session", startedAt, map[string]any{
			"session_id": session.ID,
			"readings":   len(session.Readings),
		}, err)
	}()

	return s.mutate(ctx, func(sessions []domain.Session) ([]domain.Session, error) {
		return append(sessions, session), nil
	})
}

func (s *sessionStore) GetAll(ctx context.Context) []domain.Session {
	sessions, err := readSessions(ctx, s.blobs)
	if err != nil {
		s.observe(ctx, "get-all-sessions", time.Now().UTC(), nil, err)
		return []domain.Session{}
	}
	if sessions == nil {
		return []domain.Session{}
	}
	return sessions
}

// ListNewestFirst is GetAll ordered by start time, most recent first.
func (s *sessionStore) ListNewestFirst(ctx context.Context) []domain.Session {
	sessions := s.GetAll(ctx)
	SortNewestFirst(sessions)
	return sessions
}

func (s *sessionStore) GetFiltered(ctx context.Context, filters domain.HistoryFilters) []domain.Session {
	out := []domain.Session{}
	for _, session := range s.GetAll(ctx) {
		if filters.Match(session) {
			out = append(out, session)
		}
	}
	return out
}

func (s *sessionStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	for _, session := range s.GetAll(ctx) {
		if session.ID == id {
			return session, nil
		}
	}
	return domain.Session{}, fmt.Errorf("session %s: %w", id, repository.ErrNotFound)
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	return s.DeleteMany(ctx, id)
}

// DeleteMany removes every session whose id is listed. Unknown ids are ignored.
func (s *sessionStore) DeleteMany(ctx context.Context, ids ...string) (err error) {
	startedAt := time.Now().UTC()
	removed := 0
	defer func() {
		s.observe(ctx, "delete-sessions", startedAt, map[string]any{
			"requested": len(ids),
			"removed":   removed,
		}, err)
	}()

	drop := idSet(ids)
	return s.mutate(ctx, func(sessions []domain.Session) ([]domain.Session, error) {
		kept := make([]domain.Session, 0, len(sessions))
		removed = 0
		for _, session := range sessions {
			if drop[session.ID] {
				removed++
				continue
			}
			kept = append(kept, session)
		}
		return kept, nil
	})
}

func (s *sessionStore) ClearAll(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	defer func() { s.observe(ctx, "clear-sessions", startedAt, nil, err) }()

	if err := s.blobs.Remove(ctx, KeySessions); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// ExportJSON serialises the whole collection as an indented JSON array.
// Unlike GetAll it fails loudly, so a broken store never exports as empty.
func (s *sessionStore) ExportJSON(ctx context.Context) (string, error) {
	sessions, err := readSessions(ctx, s.blobs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	payload, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encoding export: %w", ErrPersistence, err)
	}
	return string(payload), nil
}

// ImportJSON replaces the whole collection with the sessions in blob. Nothing
// is written unless every session passes validation.
func (s *sessionStore) ImportJSON(ctx context.Context, blob string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"bytes": len(blob)}
	defer func() { s.observe(ctx, "import-sessions", startedAt, fields, err) }()

	var sessions []domain.Session
	if err := json.Unmarshal([]byte(blob), &sessions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	if err := validateImport(sessions); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	fields["sessions"] = len(sessions)

	if sessions == nil {
		sessions = []domain.Session{}
	}
	if err := storeJSON(ctx, s.blobs, KeySessions, sessions); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func validateImport(sessions []domain.Session) error {
	var result *multierror.Error
	seen := make(map[string]bool, len(sessions))
	for i, session := range sessions {
		if err := session.Validate(analysis.Classify); err != nil {
			result = multierror.Append(result, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if seen[session.ID] {
			result = multierror.Append(result, fmt.Errorf("entry %d: duplicate session id %s", i, session.ID))
		}
		seen[session.ID] = true
	}
	return result.ErrorOrNil()
}

func (s *sessionStore) SaveCurrent(ctx context.Context, p domain.PartialSession) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observe(ctx, "save-current-session", startedAt, map[string]any{
			"session_id": p.ID,
			"readings":   len(p.Readings),
		}, err)
	}()

	if err := storeJSON(ctx, s.blobs, KeyCurrentSession, p); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// GetCurrent returns the resume snapshot. Absent, corrupt, or incomplete
// snapshots all report false.
func (s *sessionStore) GetCurrent(ctx context.Context) (domain.PartialSession, bool) {
	var p domain.PartialSession
	if err := loadJSON(ctx, s.blobs, KeyCurrentSession, &p); err != nil {
		s.observe(ctx, "get-current-session", time.Now().UTC(), nil, err)
		return domain.PartialSession{}, false
	}
	if !p.Resumable() {
		return domain.PartialSession{}, false
	}
	return p, true
}

func (s *sessionStore) ClearCurrent(ctx context.Context) error {
	if err := s.blobs.Remove(ctx, KeyCurrentSession); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
