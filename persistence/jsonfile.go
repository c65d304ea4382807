package persistence

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/arthur-debert/nedb/document"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// JSONFile is an append-only newline-delimited JSON log, guarded by
// github.com/gofrs/flock the same way nanostore's JSONStorage guards its
// single-file store (nanostore/storage/internal/json_storage.go), adapted
// here from "one document per Save call" to an append-only operation log so
// insert/update/remove/index-lifecycle records can all be replayed in
// order by loadDatabase.
type JSONFile struct {
	path      string
	lock      *flock.Flock
	mu        sync.Mutex
	segmentID string
}

// NewJSONFile opens (without yet creating) an append-only log at path.
// Each JSONFile instance is stamped with a fresh segment ID, available
// through SegmentID; the ID is not written into the log.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{
		path:      path,
		lock:      flock.New(path + ".lock"),
		segmentID: uuid.New().String(),
	}
}

// SegmentID returns this instance's session identifier.
func (f *JSONFile) SegmentID() string { return f.segmentID }

// PersistNewState appends records to the log, one JSON object per line, as
// a single flushed write under the file lock.
func (f *JSONFile) PersistNewState(records []document.D, done func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	locked, err := f.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		done(fmt.Errorf("persistence: acquire lock: %w", err))
		return
	}
	if !locked {
		done(fmt.Errorf("persistence: could not acquire file lock on %s", f.path))
		return
	}
	defer func() { _ = f.lock.Unlock() }()

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		done(fmt.Errorf("persistence: open %s: %w", f.path, err))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := document.MarshalDoc(rec)
		if err != nil {
			done(fmt.Errorf("persistence: marshal record: %w", err))
			return
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		done(fmt.Errorf("persistence: write %s: %w", f.path, err))
		return
	}
	if err := file.Sync(); err != nil {
		done(fmt.Errorf("persistence: sync %s: %w", f.path, err))
		return
	}
	done(nil)
}

// LoadAll replays every record in the log, in append order, implementing
// Loader for the store's loadDatabase operation.
func (f *JSONFile) LoadAll() ([]document.D, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	locked, err := f.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("persistence: acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("persistence: could not acquire file lock on %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", f.path, err)
	}
	defer file.Close()

	var records []document.D
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		rec, err := document.UnmarshalDoc(line)
		if err != nil {
			return nil, fmt.Errorf("persistence: parse record: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", f.path, err)
	}
	return records, nil
}

// Compact rewrites the log to contain only the documents in docs, dropping
// every tombstone and superseded update. This bounds log growth the way
// nedb-style stores periodically compact their append log.
func (f *JSONFile) Compact(docs []document.D) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	locked, err := f.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("persistence: acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("persistence: could not acquire file lock on %s", f.path)
	}
	defer func() { _ = f.lock.Unlock() }()

	tmpPath := f.path + ".compact.tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("persistence: open compact tmp: %w", err)
	}

	var buf bytes.Buffer
	for _, d := range docs {
		line, err := document.MarshalDoc(d)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("persistence: marshal record: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("persistence: write compact tmp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistence: close compact tmp: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("persistence: rename compact tmp: %w", err)
	}
	return nil
}
