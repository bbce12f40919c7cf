package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/alexanderramin/tremor/internal/repository"
)

// Logical keys in the blob store.
const (
	KeySessions       = "@parkinson_sessions"
	KeyCurrentSession = "@current_session"
	KeyPendingSync    = "@pending_sync"
)

var (
	// ErrPersistence wraps every substrate or encoding failure on a write path.
	ErrPersistence = errors.New("session store persistence failure")

	// ErrInvalidImport indicates an import blob that could not be decoded or
	// contained sessions violating their invariants.
	ErrInvalidImport = errors.New("invalid session import")
)

// errCorruptBlob marks a blob that exists but does not decode. Read paths
// treat it as absent.
var errCorruptBlob = errors.New("corrupt blob")

// loadJSON decodes the blob at key into dst. An absent key leaves dst
// untouched and returns nil. A blob that fails to decode returns errCorruptBlob.
func loadJSON(ctx context.Context, blobs repository.BlobRepo, key string, dst any) error {
	raw, err := blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", errCorruptBlob, key, err)
	}
	return nil
}

func storeJSON(ctx context.Context, blobs repository.BlobRepo, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return blobs.Set(ctx, key, string(payload))
}

// SortNewestFirst orders sessions by start time, most recent first. Ties keep
// their stored order.
func SortNewestFirst(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime > sessions[j].StartTime
	})
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
