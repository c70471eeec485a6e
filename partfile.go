package partfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Partfile is one resumable partial-file container: a single on-disk
// container file accumulating out-of-order, fixed-size chunks of some
// logical target file, readable at arbitrary byte positions before it is
// complete, and materializable into a contiguous file once it is.
//
// A Partfile must not be used from more than one writer goroutine at a
// time; concurrent reads alongside a single writer are safe. All exported
// methods are safe to call after Dispose: the read, write and Create
// methods return ErrDisposed, a repeated Dispose returns nil, and the
// accessors return their last-known values rather than panicking.
type Partfile struct {
	mu sync.RWMutex

	opts       Options
	filename   string
	targetPath string
	partPath   string

	chunksize      int32
	size           int64
	firstChunksize int32 // unknown32 until established
	lastChunksize  int32 // unknown32 until established
	firstChunkpos  int32 // unknown32 until chunk 0 has been appended
	lastChunkpos   int32 // unknown32 until the last logical chunk has been appended

	headersSize int64
	geo         geometry

	index       *chunkIndex
	curChunkPos int32 // -1 means zero chunks appended so far

	store *containerStore // nil once created and the container has no handles left
	read  *readHandle      // container read handle, later swapped for the completed file's

	created  bool
	disposed bool
}

// OpenNew begins a brand-new container for filename, chunksize bytes per
// ordinary chunk, and an (optional, -1 if unknown) total size.
func OpenNew(filename string, chunksize int32, size int64, opts *Options) (*Partfile, error) {
	if filename == "" {
		return nil, newInvalidArgument("filename", filename, "filename cannot be empty")
	}
	if err := validateChunksize(chunksize); err != nil {
		return nil, err
	}

	resolved, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := validateBoundarySize("first_chunksize", resolved.FirstChunksize, chunksize); err != nil {
		return nil, err
	}
	if err := validateBoundarySize("last_chunksize", resolved.LastChunksize, chunksize); err != nil {
		return nil, err
	}
	if size == unknown64 && resolved.AutoCreate {
		return nil, newInvalidArgument("size", size, "cannot auto-create a file of unknown size")
	}

	targetPath := filepath.Join(resolved.Folder, filename)
	partPath := filepath.Join(resolved.PartFolder, filename+resolved.PartExtension)

	exists, err := pathExists(resolved.FileSystem, targetPath)
	if err != nil {
		return nil, newIoError("stat", targetPath, err)
	}
	if exists {
		if !resolved.Overwrite {
			return nil, newAlreadyExists(targetPath)
		}
		if err := resolved.FileSystem.Remove(targetPath); err != nil {
			return nil, newIoError("remove", targetPath, err)
		}
	}

	if size == 0 {
		return createEmptyPartfile(filename, targetPath, partPath, chunksize, resolved)
	}

	store, readFile, err := createContainer(resolved.FileSystem, partPath, resolved.PartOverwrite)
	if err != nil {
		return nil, err
	}

	h := &header{
		Size:           size,
		FirstChunkpos:  unknown32,
		FirstChunksize: resolved.FirstChunksize,
		LastChunkpos:   unknown32,
		LastChunksize:  resolved.LastChunksize,
		Chunksize:      chunksize,
		Filename:       filename,
		Folder:         resolved.Folder,
		PartFolder:     resolved.PartFolder,
	}
	if err := store.writeHeader(h); err != nil {
		store.close()
		readFile.Close()
		store.remove()
		return nil, err
	}

	geo, err := calculateGeometry(store.headersSize, size, chunksize, resolved.FirstChunksize, resolved.LastChunksize)
	if err != nil {
		store.close()
		readFile.Close()
		store.remove()
		return nil, err
	}

	pf := &Partfile{
		opts:           resolved,
		filename:       filename,
		targetPath:     targetPath,
		partPath:       partPath,
		chunksize:      chunksize,
		size:           size,
		firstChunksize: resolved.FirstChunksize,
		lastChunksize:  resolved.LastChunksize,
		firstChunkpos:  unknown32,
		lastChunkpos:   unknown32,
		headersSize:    store.headersSize,
		geo:            geo,
		index:          newChunkIndex(),
		curChunkPos:    -1,
		store:          store,
		read:           newReadHandle(readFile),
	}
	return pf, nil
}

// createEmptyPartfile handles the size==0 shortcut: a zero-length completed
// file is produced immediately, with no container ever created.
func createEmptyPartfile(filename, targetPath, partPath string, chunksize int32, opts Options) (*Partfile, error) {
	target, err := opts.FileSystem.OpenFile(targetPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, newIoError("create", targetPath, err)
	}
	if err := target.Close(); err != nil {
		return nil, newIoError("close", targetPath, err)
	}

	pf := &Partfile{
		opts:           opts,
		filename:       filename,
		targetPath:     targetPath,
		partPath:       partPath,
		chunksize:      chunksize,
		size:           0,
		firstChunksize: unknown32,
		lastChunksize:  unknown32,
		firstChunkpos:  unknown32,
		lastChunkpos:   unknown32,
		geo:            geometry{Chunksize: chunksize, ChunksTotal: 0, Partsize: 0},
		index:          newChunkIndex(),
		curChunkPos:    -1,
		created:        true,
	}

	if opts.OnFileCreating != nil {
		opts.OnFileCreating(pf)
	}
	if opts.OnFileCreated != nil {
		opts.OnFileCreated(pf)
	}

	if opts.StayAlive {
		readFile, err := opts.FileSystem.OpenFile(targetPath, os.O_RDONLY, 0644)
		if err != nil {
			return nil, newIoError("open", targetPath, err)
		}
		pf.read = newReadHandle(readFile)
	}
	return pf, nil
}

// OpenExisting resumes from an on-disk container at containerPath. Unless
// forceOptionsFolder is set, Options.Folder/PartFolder are overridden from
// the values recorded in the container's own header.
func OpenExisting(containerPath string, forceOptionsFolder bool, opts *Options) (*Partfile, error) {
	resolved, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	store, readFile, err := openContainerForResume(resolved.FileSystem, containerPath)
	if err != nil {
		return nil, err
	}
	rh := newReadHandle(readFile)

	h := &header{}
	headersSize, err := h.ReadFrom(readFile)
	if err != nil {
		rh.Close()
		return nil, err
	}
	store.headersSize = headersSize

	if !forceOptionsFolder {
		resolved.Folder = h.Folder
		resolved.PartFolder = h.PartFolder
	}
	if base := filepath.Base(containerPath); strings.HasPrefix(base, h.Filename) {
		resolved.PartExtension = base[len(h.Filename):]
	}

	targetPath := filepath.Join(resolved.Folder, h.Filename)
	exists, err := pathExists(resolved.FileSystem, targetPath)
	if err != nil {
		rh.Close()
		return nil, newIoError("stat", targetPath, err)
	}
	if exists {
		if !resolved.Overwrite {
			rh.Close()
			return nil, newAlreadyExists(targetPath)
		}
		if err := resolved.FileSystem.Remove(targetPath); err != nil {
			rh.Close()
			return nil, newIoError("remove", targetPath, err)
		}
	}
	if dir := filepath.Dir(targetPath); dir != "." && dir != "" {
		if err := resolved.FileSystem.MkdirAll(dir, 0755); err != nil {
			rh.Close()
			return nil, newIoError("mkdirall", dir, err)
		}
	}

	geo, err := calculateGeometry(headersSize, h.Size, h.Chunksize, h.FirstChunksize, h.LastChunksize)
	if err != nil {
		rh.Close()
		return nil, err
	}

	info, err := resolved.FileSystem.Stat(containerPath)
	if err != nil {
		rh.Close()
		return nil, newIoError("stat", containerPath, err)
	}

	entries, endOffset, err := store.walkBody(rh, info.Size(), h.FirstChunkpos, h.LastChunkpos, h.Chunksize, h.FirstChunksize, h.LastChunksize)
	if err != nil {
		rh.Close()
		return nil, err
	}

	idx := newChunkIndex()
	var curChunkPos int32 = -1
	for _, e := range entries {
		idx.Set(e.ID, e.Ordinal)
		curChunkPos = e.Ordinal
	}

	if err := store.openAppend(endOffset); err != nil {
		rh.Close()
		return nil, err
	}

	pf := &Partfile{
		opts:           resolved,
		filename:       h.Filename,
		targetPath:     targetPath,
		partPath:       containerPath,
		chunksize:      h.Chunksize,
		size:           h.Size,
		firstChunksize: h.FirstChunksize,
		lastChunksize:  h.LastChunksize,
		headersSize:    headersSize,
		geo:            geo,
		index:          idx,
		curChunkPos:    curChunkPos,
		store:          store,
		read:           rh,
	}
	pf.refreshBoundaryPositionsLocked()

	if resolved.AutoCreate && geo.Partsize != unknown64 && endOffset == geo.Partsize {
		if err := pf.Create(); err != nil {
			return nil, err
		}
	}

	return pf, nil
}

func resolveOptions(opts *Options) (Options, error) {
	if opts == nil {
		d := DefaultOptions()
		opts = &d
	}
	return opts.resolved()
}

// refreshBoundaryPositionsLocked recomputes firstChunkpos/lastChunkpos from
// the chunk index: these fields are a cache derived from the index rather
// than trusted blindly from a header patch, since a header patch can land
// on disk before the record it describes.
func (pf *Partfile) refreshBoundaryPositionsLocked() {
	if ord, ok := pf.index.Get(0); ok {
		pf.firstChunkpos = ord
	} else {
		pf.firstChunkpos = unknown32
	}
	if pf.geo.ChunksTotal != unknown32 {
		if ord, ok := pf.index.Get(pf.geo.ChunksTotal - 1); ok {
			pf.lastChunkpos = ord
		} else {
			pf.lastChunkpos = unknown32
		}
	} else {
		pf.lastChunkpos = unknown32
	}
}

func (pf *Partfile) refreshGeometryLocked() error {
	g, err := calculateGeometry(pf.headersSize, pf.size, pf.chunksize, pf.firstChunksize, pf.lastChunksize)
	if err != nil {
		return err
	}
	pf.geo = g
	return nil
}

func (pf *Partfile) maybeAutoCreateLocked() error {
	if pf.created || !pf.opts.AutoCreate {
		return nil
	}
	if pf.geo.Partsize == unknown64 {
		return nil
	}
	if pf.store.appendOffset != pf.geo.Partsize {
		return nil
	}
	return pf.createLocked()
}

// Write appends the middle chunk chunkId, reading exactly chunksize bytes
// from buf starting at offset. Writing to an already-created Partfile or
// re-writing an id already present is a no-op that emits a Warning.
func (pf *Partfile) Write(chunkID int32, buf []byte, offset int) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if pf.disposed {
		return ErrDisposed
	}
	if pf.created {
		pf.opts.warn(pf, "write ignored: partfile already created")
		return nil
	}
	if pf.index.Has(chunkID) {
		pf.opts.warn(pf, "write ignored: duplicate chunk id")
		return nil
	}
	if err := validateChunkID(chunkID, pf.geo.ChunksTotal); err != nil {
		return err
	}
	if err := validateBuffer(buf, offset, int(pf.chunksize)); err != nil {
		return err
	}

	payload := buf[offset : offset+int(pf.chunksize)]
	ordinal := pf.curChunkPos + 1
	if err := pf.store.appendRecord(chunkID, payload, pf.opts.FlushOnEveryChunk); err != nil {
		return err
	}
	pf.curChunkPos = ordinal
	pf.index.Set(chunkID, ordinal)
	if err := pf.refreshGeometryLocked(); err != nil {
		return err
	}
	pf.refreshBoundaryPositionsLocked()
	return pf.maybeAutoCreateLocked()
}

// WriteFirst appends the distinguished first logical chunk (id 0), reading
// length bytes from buf starting at offset. length establishes
// first_chunksize if it was not already known.
func (pf *Partfile) WriteFirst(buf []byte, offset, length int) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.writeFirstLocked(buf, offset, length)
}

func (pf *Partfile) writeFirstLocked(buf []byte, offset, length int) error {
	if pf.disposed {
		return ErrDisposed
	}
	if pf.created {
		pf.opts.warn(pf, "write_first ignored: partfile already created")
		return nil
	}
	if pf.index.Has(0) {
		pf.opts.warn(pf, "write_first ignored: duplicate chunk id")
		return nil
	}
	if err := validateBoundarySize("first_chunksize", int32(length), pf.chunksize); err != nil {
		return err
	}
	if err := validateBuffer(buf, offset, length); err != nil {
		return err
	}

	payload := buf[offset : offset+length]
	ordinal := pf.curChunkPos + 1

	if err := pf.store.patchFirst(ordinal, int32(length)); err != nil {
		return err
	}
	if err := pf.store.appendRecord(0, payload, pf.opts.FlushOnEveryChunk); err != nil {
		return err
	}
	pf.curChunkPos = ordinal
	pf.index.Set(0, ordinal)
	pf.firstChunksize = int32(length)

	if err := pf.refreshGeometryLocked(); err != nil {
		return err
	}
	pf.refreshBoundaryPositionsLocked()
	return pf.maybeAutoCreateLocked()
}

// WriteLast appends the distinguished last logical chunk chunkId, reading
// length bytes from buf starting at offset. WriteLast(0, ...) delegates
// entirely to WriteFirst, for the single-chunk case where first and last
// are the same chunk.
func (pf *Partfile) WriteLast(chunkID int32, buf []byte, offset, length int) error {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if chunkID == 0 {
		return pf.writeFirstLocked(buf, offset, length)
	}

	if pf.disposed {
		return ErrDisposed
	}
	if pf.created {
		pf.opts.warn(pf, "write_last ignored: partfile already created")
		return nil
	}
	if pf.index.Has(chunkID) {
		pf.opts.warn(pf, "write_last ignored: duplicate chunk id")
		return nil
	}
	if err := validateBoundarySize("last_chunksize", int32(length), pf.chunksize); err != nil {
		return err
	}
	if err := validateBuffer(buf, offset, length); err != nil {
		return err
	}

	payload := buf[offset : offset+length]
	ordinal := pf.curChunkPos + 1

	if err := pf.store.patchLast(ordinal, int32(length)); err != nil {
		return err
	}
	if err := pf.store.appendRecord(chunkID, payload, pf.opts.FlushOnEveryChunk); err != nil {
		return err
	}
	pf.curChunkPos = ordinal
	pf.index.Set(chunkID, ordinal)
	pf.lastChunksize = int32(length)

	if err := pf.refreshGeometryLocked(); err != nil {
		return err
	}
	pf.refreshBoundaryPositionsLocked()
	return pf.maybeAutoCreateLocked()
}

func chunkIDForPos(pos int64, firstChunksize, chunksize int32) int32 {
	if pos < int64(firstChunksize) {
		return 0
	}
	return int32((pos-int64(firstChunksize))/int64(chunksize)) + 1
}

func startByteForPos(pos int64, chunkID int32, firstChunksize, chunksize int32) int32 {
	if chunkID == 0 {
		return int32(pos)
	}
	return int32((pos - int64(firstChunksize)) % int64(chunksize))
}

// ReadAt fills up to count bytes of buf (starting at offset) with the
// logical byte range beginning at pos. The returned count is clamped to
// size-pos when size is known.
func (pf *Partfile) ReadAt(pos int64, buf []byte, offset, count int) (int, error) {
	// The read lock is held for the entire call, including the positional
	// I/O below, not just the field snapshot: Create holds the write lock
	// while it closes and swaps pf.read from the container's handle to the
	// completed file's, and a container-relative offset computed here is
	// only valid against the handle that was live when it was computed. If
	// the lock were released before the I/O, Create could swap handles in
	// between and this call would read the wrong bytes from the wrong file.
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	disposed := pf.disposed
	created := pf.created
	size := pf.size
	firstChunksize := pf.firstChunksize
	chunksize := pf.chunksize
	geo := pf.geo
	firstChunkpos := pf.firstChunkpos
	lastChunkpos := pf.lastChunkpos
	filename := pf.filename
	partPath := pf.partPath
	targetPath := pf.targetPath
	index := pf.index
	read := pf.read

	if disposed {
		return 0, ErrDisposed
	}
	if err := validatePosition(pos); err != nil {
		return 0, err
	}
	if size != unknown64 && pos > size {
		return 0, newInvalidArgument("pos", pos, "position beyond size")
	}
	if size != unknown64 {
		if remaining := size - pos; int64(count) > remaining {
			count = int(remaining)
		}
	}
	if count <= 0 {
		return 0, nil
	}
	if err := validateBuffer(buf, offset, count); err != nil {
		return 0, err
	}
	if firstChunksize == unknown32 {
		return 0, newNotReady(filename, "first chunk size unknown")
	}

	if created {
		n, err := read.ReadAt(buf[offset:offset+count], pos)
		if err != nil {
			return n, newIoError("readat", targetPath, err)
		}
		return n, nil
	}

	totalRead := 0
	curPos := pos
	sizeLeft := count
	for sizeLeft > 0 {
		chunkID := chunkIDForPos(curPos, firstChunksize, chunksize)
		startByte := startByteForPos(curPos, chunkID, firstChunksize, chunksize)

		ordinal, ok := index.Get(chunkID)
		if !ok {
			return totalRead, newMissingChunk(filename, chunkID)
		}

		capacity := geo.Capacity(chunkID)
		readsize := int(capacity) - int(startByte)
		if readsize > sizeLeft {
			readsize = sizeLeft
		}
		if readsize <= 0 {
			return totalRead, newMissingChunk(filename, chunkID)
		}

		off := chunkOffset(geo, ordinal, firstChunkpos, lastChunkpos) + int64(startByte)
		n, err := read.ReadAt(buf[offset+totalRead:offset+totalRead+readsize], off)
		if err != nil {
			return totalRead, newIoError("readat", partPath, err)
		}
		totalRead += n
		curPos += int64(n)
		sizeLeft -= n
		if n < readsize {
			break
		}
	}
	return totalRead, nil
}

// ReadAtAlloc is the allocating convenience form of ReadAt.
func (pf *Partfile) ReadAtAlloc(pos int64, count int) ([]byte, error) {
	buf := make([]byte, count)
	n, err := pf.ReadAt(pos, buf, 0, count)
	return buf[:n], err
}

// ReadChunk reads up to count bytes of a single logical chunk's payload,
// starting at startByte within that chunk, into buf starting at offset.
func (pf *Partfile) ReadChunk(chunkID int32, startByte int64, buf []byte, offset, count int) (int, error) {
	// See ReadAt: the read lock must cover the positional I/O itself, not
	// just the field snapshot, so a concurrent Create cannot swap pf.read
	// out from under an offset computed against the old handle.
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	disposed := pf.disposed
	created := pf.created
	filename := pf.filename
	partPath := pf.partPath
	targetPath := pf.targetPath
	firstChunksize := pf.firstChunksize
	chunksize := pf.chunksize
	geo := pf.geo
	firstChunkpos := pf.firstChunkpos
	lastChunkpos := pf.lastChunkpos
	index := pf.index
	read := pf.read

	if disposed {
		return 0, ErrDisposed
	}
	ordinal, ok := index.Get(chunkID)
	if !ok {
		return 0, newMissingChunk(filename, chunkID)
	}

	capacity := geo.Capacity(chunkID)
	if startByte < 0 || startByte > int64(capacity) {
		return 0, newInvalidArgument("startByte", startByte, "start byte out of chunk range")
	}
	if remaining := int64(capacity) - startByte; int64(count) > remaining {
		count = int(remaining)
	}
	if count <= 0 {
		return 0, nil
	}
	if err := validateBuffer(buf, offset, count); err != nil {
		return 0, err
	}

	if created {
		logical := startByte
		if chunkID > 0 {
			logical += int64(firstChunksize) + int64(chunkID-1)*int64(chunksize)
		}
		n, err := read.ReadAt(buf[offset:offset+count], logical)
		if err != nil {
			return n, newIoError("readat", targetPath, err)
		}
		return n, nil
	}

	off := chunkOffset(geo, ordinal, firstChunkpos, lastChunkpos) + startByte
	n, err := read.ReadAt(buf[offset:offset+count], off)
	if err != nil {
		return n, newIoError("readat", partPath, err)
	}
	return n, nil
}

// Create materializes folder/filename from the chunks written so far. It is
// idempotent: a second call on an already-created Partfile is a no-op.
func (pf *Partfile) Create() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.createLocked()
}

func (pf *Partfile) createLocked() error {
	if pf.disposed {
		return ErrDisposed
	}
	if pf.created {
		return nil
	}

	if pf.opts.OnFileCreating != nil {
		pf.opts.OnFileCreating(pf)
	}

	// Materialize into a staging file alongside the target first, then
	// rename into place: a crash partway through draining chunks leaves
	// only an orphaned staging file behind, never a half-written
	// folder/filename for a caller to observe.
	stagingPath := pf.targetPath + ".partfile-" + uuid.NewString()
	staging, err := pf.opts.FileSystem.OpenFile(stagingPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return newIoError("create", stagingPath, err)
	}
	abortStaging := func() {
		staging.Close()
		pf.opts.FileSystem.Remove(stagingPath)
	}

	total := pf.geo.ChunksTotal
	jobs := make([]chunkReadJob, total)
	for id := int32(0); id < total; id++ {
		ordinal, ok := pf.index.Get(id)
		if !ok {
			abortStaging()
			return newMissingChunk(pf.filename, id)
		}
		capacity := pf.geo.Capacity(id)
		jobs[id] = chunkReadJob{
			id:      id,
			offset:  chunkOffset(pf.geo, ordinal, pf.firstChunkpos, pf.lastChunkpos),
			payload: make([]byte, capacity),
		}
	}

	if err := readChunksParallel(pf.read, jobs, pf.opts.Parallel); err != nil {
		abortStaging()
		return newIoError("readat", pf.partPath, err)
	}

	for id := int32(0); id < total; id++ {
		if _, err := staging.Write(jobs[id].payload); err != nil {
			abortStaging()
			return newIoError("write", stagingPath, err)
		}
	}

	if err := staging.Close(); err != nil {
		pf.opts.FileSystem.Remove(stagingPath)
		return newIoError("close", stagingPath, err)
	}
	if err := pf.opts.FileSystem.Rename(stagingPath, pf.targetPath); err != nil {
		pf.opts.FileSystem.Remove(stagingPath)
		return newIoError("rename", pf.targetPath, err)
	}

	if err := pf.store.close(); err != nil {
		return err
	}
	if err := pf.read.Close(); err != nil {
		return err
	}

	pf.created = true

	if pf.opts.DeletePartOnCreate {
		if err := pf.store.remove(); err != nil {
			return err
		}
	}

	if pf.opts.OnFileCreated != nil {
		pf.opts.OnFileCreated(pf)
	}

	if pf.opts.StayAlive {
		targetRead, err := pf.opts.FileSystem.OpenFile(pf.targetPath, os.O_RDONLY, 0644)
		if err != nil {
			return newIoError("open", pf.targetPath, err)
		}
		pf.read.Swap(targetRead)
		return nil
	}

	return pf.disposeLocked()
}

// Dispose releases all resources held by pf and, per Options, deletes the
// container and/or completed files. It is idempotent.
func (pf *Partfile) Dispose() error {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.disposeLocked()
}

func (pf *Partfile) disposeLocked() error {
	if pf.disposed {
		return nil
	}
	pf.disposed = true

	var errs []error
	if pf.store != nil {
		if err := pf.store.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if pf.read != nil {
		if err := pf.read.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if pf.opts.DeletePartOnDispose && pf.store != nil {
		if err := pf.store.remove(); err != nil {
			errs = append(errs, err)
		}
	}
	if pf.opts.DeleteOnDispose {
		if err := pf.opts.FileSystem.Remove(pf.targetPath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, newIoError("remove", pf.targetPath, err))
		}
	}
	pf.index = nil

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// GetReadStream returns a positional, read-only sequential view over pf.
func (pf *Partfile) GetReadStream() *PartStream {
	return &PartStream{pf: pf}
}

// Progress returns a read-only snapshot of how much of pf has been written.
func (pf *Partfile) Progress() Progress {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	written := pf.curChunkPos + 1
	bytesWritten := pf.size
	if !pf.created && pf.store != nil {
		bytesWritten = pf.store.appendOffset - pf.headersSize
	}
	return Progress{
		ChunksWritten: written,
		ChunksTotal:   pf.geo.ChunksTotal,
		BytesWritten:  bytesWritten,
		Partsize:      pf.geo.Partsize,
	}
}

// Read-only accessors.

func (pf *Partfile) Filename() string {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.filename
}

func (pf *Partfile) Chunksize() int32 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.chunksize
}

func (pf *Partfile) Size() int64 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.size
}

func (pf *Partfile) Options() Options {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.opts
}

func (pf *Partfile) Created() bool {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.created
}

func (pf *Partfile) Disposed() bool {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.disposed
}

func (pf *Partfile) Partsize() int64 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.geo.Partsize
}

func (pf *Partfile) ChunksWritten() int32 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.curChunkPos + 1
}

func (pf *Partfile) ChunksTotal() int32 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.geo.ChunksTotal
}

func (pf *Partfile) FirstChunkpos() int32 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.firstChunkpos
}

func (pf *Partfile) LastChunkpos() int32 {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.lastChunkpos
}

// ChunkPosition reports the ordinal at which chunkID was appended, if any.
func (pf *Partfile) ChunkPosition(chunkID int32) (int32, bool) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	if pf.index == nil {
		return 0, false
	}
	return pf.index.Get(chunkID)
}
