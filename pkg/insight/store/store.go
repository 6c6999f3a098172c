// Package store persists file records in a Badger key-value database.
//
// Records are keyed by a surrogate id with a path index on the side, so
// re-saving a path overwrites its previous row instead of duplicating
// it. Video metadata lives in its own keyspace and is cascade-deleted
// with the owning record.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/jamesainslie/insight/pkg/insight/logging"
	"github.com/jamesainslie/insight/pkg/insight/types"
)

// ErrSchemaMismatch is returned when the database on disk was written
// with an incompatible schema version.
var ErrSchemaMismatch = errors.New("store schema version mismatch")

// QueryOptions narrows a Query.
type QueryOptions struct {
	// Limit caps the number of returned records; 0 means no limit.
	Limit int

	// VideoOnly restricts results to video files.
	VideoOnly bool

	// Extensions restricts results to the given extensions (lowercase,
	// with leading dot). Empty means all extensions.
	Extensions []string
}

// Store persists and retrieves file records.
type Store interface {
	// Save upserts records by path and returns how many were written.
	// Per-record failures do not stop the batch; they are joined into
	// the returned error.
	Save(ctx context.Context, records []types.FileRecord) (int, error)

	// Query returns stored records matching opts, ordered by path
	// ascending.
	Query(ctx context.Context, opts QueryOptions) ([]types.FileRecord, error)

	// Count returns the number of stored records, or only video records
	// when videoOnly is set.
	Count(ctx context.Context, videoOnly bool) (int, error)

	// DeleteAll removes every record and returns how many were deleted.
	DeleteAll(ctx context.Context) (int, error)

	Close() error
}

// BadgerStore is the Badger-backed Store implementation.
type BadgerStore struct {
	db  *badger.DB
	log *logging.Logger
}

var _ Store = (*BadgerStore)(nil)

// Open opens or creates a store at the given directory path.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &BadgerStore{
		db:  db,
		log: logging.Get("store"),
	}

	if err := s.checkSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// checkSchema verifies the on-disk schema version, stamping it on first
// open.
func (s *BadgerStore) checkSchema() error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySchema))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return txn.Set([]byte(keySchema), []byte{SchemaVersion})
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) != 1 || val[0] != SchemaVersion {
				return fmt.Errorf("%w: found %v, want %d", ErrSchemaMismatch, val, SchemaVersion)
			}
			return nil
		})
	})
}

// Save upserts records by path. Every record is stamped with the same
// save timestamp. A failure on one record is collected and the batch
// continues; the joined error reports all failures.
func (s *BadgerStore) Save(ctx context.Context, records []types.FileRecord) (int, error) {
	savedAt := time.Now().UTC()
	saved := 0
	var errs []error

	for i := range records {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		rec := &records[i]
		if err := s.saveOne(rec, savedAt); err != nil {
			s.log.Warn("save failed", "path", rec.Path, "error", err)
			errs = append(errs, fmt.Errorf("save %s: %w", rec.Path, err))
			continue
		}
		saved++
	}

	s.log.Info("records saved", "count", saved, "failed", len(errs))
	return saved, errors.Join(errs...)
}

func (s *BadgerStore) saveOne(rec *types.FileRecord, savedAt time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		id, err := lookupID(txn, rec.Path)
		if errors.Is(err, badger.ErrKeyNotFound) {
			id = uuid.NewString()
			err = nil
		}
		if err != nil {
			return err
		}

		row := storedRecord{
			ID:        id,
			Path:      rec.Path,
			Size:      rec.Size,
			Extension: rec.Extension,
			Created:   rec.Created,
			Modified:  rec.Modified,
			Preview:   rec.Preview,
			MIMEType:  rec.MIMEType,
			SavedAt:   savedAt,
		}
		value, err := row.encode()
		if err != nil {
			return err
		}

		if err := txn.Set(recordKey(id), value); err != nil {
			return err
		}
		if err := txn.Set(pathKey(rec.Path), []byte(id)); err != nil {
			return err
		}

		// The video row mirrors the record's current state: written when
		// metadata exists, removed when a re-save no longer has it.
		if rec.Video != nil {
			videoValue, err := encodeVideo(rec.Video)
			if err != nil {
				return err
			}
			return txn.Set(videoKey(id), videoValue)
		}
		err = txn.Delete(videoKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

func lookupID(txn *badger.Txn, path string) (string, error) {
	item, err := txn.Get(pathKey(path))
	if err != nil {
		return "", err
	}
	var id string
	err = item.Value(func(val []byte) error {
		id = string(val)
		return nil
	})
	return id, err
}

// Query returns stored records matching opts. Iteration follows the
// path index, so results come back ordered by path ascending.
func (s *BadgerStore) Query(ctx context.Context, opts QueryOptions) ([]types.FileRecord, error) {
	extensions := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	var results []types.FileRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixPath)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if opts.Limit > 0 && len(results) >= opts.Limit {
				return nil
			}

			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			rec, err := loadRecord(txn, id)
			if err != nil {
				return err
			}

			if opts.VideoOnly && !rec.IsVideo() {
				continue
			}
			if len(extensions) > 0 {
				if _, ok := extensions[rec.Extension]; !ok {
					continue
				}
			}

			results = append(results, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// loadRecord reads a record row and attaches its video row if present.
func loadRecord(txn *badger.Txn, id string) (types.FileRecord, error) {
	item, err := txn.Get(recordKey(id))
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("record %s: %w", id, err)
	}

	var row storedRecord
	if err := item.Value(row.decode); err != nil {
		return types.FileRecord{}, fmt.Errorf("decode record %s: %w", id, err)
	}

	rec := row.toRecord()

	videoItem, err := txn.Get(videoKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, nil
	}
	if err != nil {
		return types.FileRecord{}, err
	}

	err = videoItem.Value(func(val []byte) error {
		video, err := decodeVideo(val)
		if err != nil {
			return err
		}
		rec.Video = video
		return nil
	})
	if err != nil {
		return types.FileRecord{}, fmt.Errorf("decode video %s: %w", id, err)
	}

	return rec, nil
}

// Count returns the number of stored records. With videoOnly it counts
// only records whose extension marks them as video.
func (s *BadgerStore) Count(ctx context.Context, videoOnly bool) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = videoOnly
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		prefix := []byte(prefixRecord)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !videoOnly {
				count++
				continue
			}

			var row storedRecord
			if err := it.Item().Value(row.decode); err != nil {
				return err
			}
			if types.IsVideoExtension(row.Extension) {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteAll removes every record, video row, and path index entry. The
// returned count is the number of record rows removed. Deletion goes
// through DropPrefix rather than a transaction, so arbitrarily large
// stores never hit badger's per-transaction size cap.
func (s *BadgerStore) DeleteAll(ctx context.Context) (int, error) {
	deleted, err := s.Count(ctx, false)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}

	err = s.db.DropPrefix(
		[]byte(prefixRecord),
		[]byte(prefixVideo),
		[]byte(prefixPath),
	)
	if err != nil {
		return 0, err
	}

	s.log.Info("store cleared", "deleted", deleted)
	return deleted, nil
}
