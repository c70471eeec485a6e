package partfile

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/absfs/absfs"
)

// readHandle is a positional-read-only view over a single absfs.File that
// can be swapped out for another file without readers ever observing a
// half-closed or nil handle mid-call: every ReadAt takes the read lock, and
// the one place the underlying file identity changes — Partfile.Create,
// swapping the container's read handle for the completed file's — takes
// the write lock for the duration of the swap.
type readHandle struct {
	mu sync.RWMutex
	f  absfs.File
}

func newReadHandle(f absfs.File) *readHandle {
	return &readHandle{f: f}
}

func (r *readHandle) ReadAt(buf []byte, off int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.f == nil {
		return 0, ErrDisposed
	}
	return r.f.ReadAt(buf, off)
}

// Swap replaces the underlying file and returns the previous one (which the
// caller is responsible for closing once it is safe to do so — Swap itself
// only guarantees no reader observes an intermediate state).
func (r *readHandle) Swap(f absfs.File) absfs.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.f
	r.f = f
	return old
}

// Close closes and clears the current handle, if any.
func (r *readHandle) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// containerStore (C5) owns the container file's append/patch handle, used
// exclusively by the writer; the container's read handle is handed back to
// the caller, which wraps it in Partfile's readHandle. It performs framed appends, header
// patch-writes, and the resume-time body walk; it never interprets chunk
// ids beyond what's needed to rebuild the index.
type containerStore struct {
	fs          absfs.FileSystem
	path        string
	headersSize int64

	write        absfs.File // nil once dropped (after Create or Dispose)
	appendOffset int64      // next byte offset a framed append will land at
}

// createContainer creates a brand-new container file at path, failing with
// AlreadyExists unless overwrite permits deleting a pre-existing one.
func createContainer(fs absfs.FileSystem, path string, overwrite bool) (*containerStore, absfs.File, error) {
	exists, err := pathExists(fs, path)
	if err != nil {
		return nil, nil, newIoError("stat", path, err)
	}
	if exists {
		if !overwrite {
			return nil, nil, newAlreadyExists(path)
		}
		if err := fs.Remove(path); err != nil {
			return nil, nil, newIoError("remove", path, err)
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, nil, newIoError("mkdirall", dir, err)
		}
	}

	write, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, nil, newIoError("create", path, err)
	}

	read, err := fs.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		write.Close()
		return nil, nil, newIoError("open", path, err)
	}

	s := &containerStore{fs: fs, path: path, write: write}
	return s, read, nil
}

// openContainerForResume opens an existing container path read-only, for
// header parsing and the truncation walk. The append handle is opened
// separately, once the resume position is known (openAppend).
func openContainerForResume(fs absfs.FileSystem, path string) (*containerStore, absfs.File, error) {
	read, err := fs.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, nil, newIoError("open", path, err)
	}
	return &containerStore{fs: fs, path: path}, read, nil
}

// openAppend opens the append/patch handle and positions the logical
// append cursor at resumeOffset (normally the byte offset the truncation
// walk stopped at).
func (s *containerStore) openAppend(resumeOffset int64) error {
	write, err := s.fs.OpenFile(s.path, os.O_RDWR, 0644)
	if err != nil {
		return newIoError("open", s.path, err)
	}
	s.write = write
	s.appendOffset = resumeOffset
	return nil
}

// writeHeader serializes h starting at offset 0 and records headersSize.
func (s *containerStore) writeHeader(h *header) error {
	if _, err := s.write.Seek(0, io.SeekStart); err != nil {
		return newIoError("seek", s.path, err)
	}
	n, err := h.WriteTo(s.write)
	if err != nil {
		return newIoError("write", s.path, err)
	}
	s.headersSize = n
	s.appendOffset = n
	return nil
}

// patchSize patches the size field in place.
func (s *containerStore) patchSize(size int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(size))
	if _, err := s.write.WriteAt(buf, offSize); err != nil {
		return newIoError("writeat", s.path, err)
	}
	return nil
}

// patchBoundary patches the (chunkpos, chunksize) pair for either the first
// or last boundary chunk as a single positional write: the two fields are
// adjacent in the header layout (see header.go), so one 8-byte WriteAt at
// posOffset covers both.
func (s *containerStore) patchBoundary(posOffset int, pos, size int32) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(pos))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(size))
	if _, err := s.write.WriteAt(buf, int64(posOffset)); err != nil {
		return newIoError("writeat", s.path, err)
	}
	return nil
}

func (s *containerStore) patchFirst(pos, size int32) error {
	return s.patchBoundary(offFirstChunkpos, pos, size)
}

func (s *containerStore) patchLast(pos, size int32) error {
	return s.patchBoundary(offLastChunkpos, pos, size)
}

// appendRecord writes the framed record (4-byte id, then payload) at the
// current append cursor in a single positional write, then advances the
// cursor. The payload is durable on disk (and flushed, if flush is set)
// before the caller is allowed to publish the chunk index entry — see
// Partfile.Write.
func (s *containerStore) appendRecord(id int32, payload []byte, flush bool) error {
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(id))
	copy(buf[4:], payload)

	if _, err := s.write.WriteAt(buf, s.appendOffset); err != nil {
		return newIoError("writeat", s.path, err)
	}
	if flush {
		if err := s.write.Sync(); err != nil {
			return newIoError("sync", s.path, err)
		}
	}
	s.appendOffset += int64(len(buf))
	return nil
}

// bodyEntry is one reconstructed (id, ordinal) pair from walkBody.
type bodyEntry struct {
	ID      int32
	Ordinal int32
}

// walkBody replays the container's chunk records in append order, starting
// at headersSize, using firstChunkpos/lastChunkpos (ordinals, -1 if
// unknown) to decide each record's expected payload length. It stops at the
// first record whose declared length would run past fileSize, treating that
// ordinal and everything after it as a crash-truncated tail to resume from.
func (s *containerStore) walkBody(read *readHandle, fileSize int64, firstChunkpos, lastChunkpos, chunksize, firstChunksize, lastChunksize int32) ([]bodyEntry, int64, error) {
	var entries []bodyEntry
	offset := s.headersSize
	var ordinal int32

	for {
		expected := chunksize
		if ordinal == firstChunkpos {
			expected = firstChunksize
		}
		if ordinal == lastChunkpos {
			expected = lastChunksize
		}
		if expected < 0 {
			// Boundary ordinal reached before its size was ever known
			// (should not happen once the header is self-consistent);
			// treat as truncated rather than reading garbage.
			break
		}
		if offset+4+int64(expected) > fileSize {
			break
		}

		idBuf := make([]byte, 4)
		if _, err := read.ReadAt(idBuf, offset); err != nil {
			return nil, 0, newIoError("readat", s.path, err)
		}
		id := int32(binary.LittleEndian.Uint32(idBuf))
		entries = append(entries, bodyEntry{ID: id, Ordinal: ordinal})

		offset += 4 + int64(expected)
		ordinal++
	}

	return entries, offset, nil
}

// close releases the write handle, if open.
func (s *containerStore) close() error {
	if s.write == nil {
		return nil
	}
	err := s.write.Close()
	s.write = nil
	return err
}

// remove deletes the container file.
func (s *containerStore) remove() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return newIoError("remove", s.path, err)
	}
	return nil
}
