package partfile

import (
	"os"
	"testing"

	"github.com/absfs/memfs"
)

func newMemOptions(t *testing.T) Options {
	t.Helper()
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	if err := fs.MkdirAll("/out", 0755); err != nil {
		t.Fatalf("mkdirall /out: %v", err)
	}
	if err := fs.MkdirAll("/parts", 0755); err != nil {
		t.Fatalf("mkdirall /parts: %v", err)
	}
	opts := DefaultOptions()
	opts.Folder = "/out"
	opts.PartFolder = "/parts"
	opts.FileSystem = fs
	return opts
}

func TestOpenNew_OutOfOrderAssembly(t *testing.T) {
	opts := newMemOptions(t)

	var created bool
	opts.OnFileCreated = func(pf *Partfile) { created = true }

	pf, err := OpenNew("movie.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.Write(2, bytesOfTest(100, 0x03), 0); err != nil {
		t.Fatalf("Write(2): %v", err)
	}
	if pf.Created() {
		t.Fatalf("created too early")
	}
	if err := pf.Write(1, bytesOfTest(100, 0x02), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}
	if err := pf.WriteFirst(bytesOfTest(20, 0x01), 0, 20); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}

	if !pf.Created() || !created {
		t.Fatalf("expected auto-create once chunk 0 arrives last")
	}
	if pf.ChunksTotal() != 3 {
		t.Fatalf("ChunksTotal() = %d, want 3", pf.ChunksTotal())
	}

	got, err := opts.FileSystem.Open("/out/movie.bin")
	if err != nil {
		t.Fatalf("open completed file: %v", err)
	}
	defer got.Close()
	buf := make([]byte, 220)
	if _, err := got.ReadAt(buf, 0); err != nil {
		t.Fatalf("readat completed: %v", err)
	}
	if buf[0] != 0x01 || buf[20] != 0x02 || buf[120] != 0x03 {
		t.Fatalf("completed file contents out of order: %x %x %x", buf[0], buf[20], buf[120])
	}
}

func TestOpenNew_SingleChunkViaWriteFirst(t *testing.T) {
	opts := newMemOptions(t)
	pf, err := OpenNew("small.bin", 10, 10, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.WriteFirst(bytesOfTest(10, 0xAA), 0, 10); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}
	if !pf.Created() {
		t.Fatalf("expected single-chunk file to auto-create immediately")
	}
	if pf.ChunksTotal() != 1 {
		t.Fatalf("ChunksTotal() = %d, want 1", pf.ChunksTotal())
	}
}

func TestOpenNew_SizeZeroShortcut(t *testing.T) {
	opts := newMemOptions(t)
	pf, err := OpenNew("empty.bin", 10, 0, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if !pf.Created() {
		t.Fatalf("expected size-0 file to be created immediately")
	}
	info, err := opts.FileSystem.Stat("/out/empty.bin")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("size = %d, want 0", info.Size())
	}
}

func TestWrite_DuplicateIsWarningNotError(t *testing.T) {
	opts := newMemOptions(t)
	opts.AutoCreate = false

	var warnings []string
	opts.OnWarning = func(pf *Partfile, message string) { warnings = append(warnings, message) }

	pf, err := OpenNew("dup.bin", 10, 30, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.Write(1, bytesOfTest(10, 'x'), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}
	if err := pf.Write(1, bytesOfTest(10, 'y'), 0); err != nil {
		t.Fatalf("duplicate Write(1) returned error instead of warning: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
}

func TestWrite_AfterCreateIsWarningNotError(t *testing.T) {
	opts := newMemOptions(t)

	var warnings []string
	opts.OnWarning = func(pf *Partfile, message string) { warnings = append(warnings, message) }

	pf, err := OpenNew("small2.bin", 10, 10, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.WriteFirst(bytesOfTest(10, 0xAA), 0, 10); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}
	if !pf.Created() {
		t.Fatalf("expected auto-create")
	}
	if err := pf.Write(1, bytesOfTest(10, 0xBB), 0); err != nil {
		t.Fatalf("late Write returned error instead of warning: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
}

func TestReadAt_BeforeFirstChunkSizeKnown(t *testing.T) {
	opts := newMemOptions(t)
	opts.AutoCreate = false

	pf, err := OpenNew("late.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.Write(1, bytesOfTest(100, 0x02), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}

	buf := make([]byte, 10)
	_, err = pf.ReadAt(0, buf, 0, 10)
	if !IsNotReady(err) {
		t.Fatalf("ReadAt before first chunk size known = %v, want NotReady", err)
	}
}

func TestReadAt_MissingChunk(t *testing.T) {
	opts := newMemOptions(t)
	opts.AutoCreate = false

	pf, err := OpenNew("missing.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.WriteFirst(bytesOfTest(20, 0x01), 0, 20); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}

	buf := make([]byte, 10)
	_, err = pf.ReadAt(20, buf, 0, 10)
	if !IsMissingChunk(err) {
		t.Fatalf("ReadAt of unwritten chunk = %v, want MissingChunk", err)
	}
}

func TestReadAt_PartialResultsServedAsChunksArrive(t *testing.T) {
	opts := newMemOptions(t)
	opts.AutoCreate = false

	pf, err := OpenNew("partial.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.WriteFirst(bytesOfTest(20, 0x01), 0, 20); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}
	if err := pf.Write(1, bytesOfTest(100, 0x02), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}

	got, err := pf.ReadAtAlloc(0, 20)
	if err != nil {
		t.Fatalf("ReadAtAlloc(0): %v", err)
	}
	if got[0] != 0x01 {
		t.Fatalf("got[0] = %x, want 0x01", got[0])
	}

	got, err = pf.ReadAtAlloc(20, 100)
	if err != nil {
		t.Fatalf("ReadAtAlloc(20): %v", err)
	}
	if got[0] != 0x02 {
		t.Fatalf("got[0] = %x, want 0x02", got[0])
	}
}

func TestOpenExisting_ResumesAfterCrash(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	if err := fs.MkdirAll("/out", 0755); err != nil {
		t.Fatalf("mkdirall /out: %v", err)
	}
	if err := fs.MkdirAll("/parts", 0755); err != nil {
		t.Fatalf("mkdirall /parts: %v", err)
	}

	opts := DefaultOptions()
	opts.Folder = "/out"
	opts.PartFolder = "/parts"
	opts.FileSystem = fs
	opts.AutoCreate = false

	pf, err := OpenNew("resumable.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	if err := pf.Write(2, bytesOfTest(100, 0x03), 0); err != nil {
		t.Fatalf("Write(2): %v", err)
	}
	if err := pf.Write(1, bytesOfTest(100, 0x02), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}
	// Simulate a crash: drop the handles without closing or disposing.
	partPath := "/parts/resumable.bin" + opts.PartExtension

	resumeOpts := DefaultOptions()
	resumeOpts.Folder = "/out"
	resumeOpts.PartFolder = "/parts"
	resumeOpts.FileSystem = fs

	resumed, err := OpenExisting(partPath, false, &resumeOpts)
	if err != nil {
		t.Fatalf("OpenExisting: %v", err)
	}
	defer resumed.Dispose()

	if resumed.ChunksWritten() != 2 {
		t.Fatalf("ChunksWritten() = %d, want 2", resumed.ChunksWritten())
	}
	if resumed.Created() {
		t.Fatalf("should not auto-create: chunk 0 is still missing")
	}

	// The first chunk's size is still unknown at this point (write_first
	// never ran before the simulated crash), so positional reads cannot yet
	// map a logical position to a chunk id.
	if _, err := resumed.ReadAtAlloc(20, 100); !IsNotReady(err) {
		t.Fatalf("ReadAtAlloc before first chunk size known = %v, want NotReady", err)
	}

	if err := resumed.WriteFirst(bytesOfTest(20, 0x01), 0, 20); err != nil {
		t.Fatalf("WriteFirst to complete resumed file: %v", err)
	}
	if !resumed.Created() {
		t.Fatalf("expected auto-create once the resumed file completes")
	}

	got, err := resumed.ReadAtAlloc(20, 100)
	if err != nil {
		t.Fatalf("ReadAtAlloc after create: %v", err)
	}
	if got[0] != 0x02 {
		t.Fatalf("got[0] = %x, want 0x02", got[0])
	}
}

func TestOpenNew_DuplicateTargetWithoutOverwrite(t *testing.T) {
	opts := newMemOptions(t)
	f, err := opts.FileSystem.OpenFile("/out/exists.bin", os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("create pre-existing target: %v", err)
	}
	f.Close()

	_, err = OpenNew("exists.bin", 10, 10, &opts)
	if !IsAlreadyExists(err) {
		t.Fatalf("OpenNew over existing target = %v, want AlreadyExists", err)
	}
}

func TestOpenNew_InvalidChunksize(t *testing.T) {
	opts := newMemOptions(t)
	_, err := OpenNew("bad.bin", 0, 10, &opts)
	if !IsInvalidArgument(err) {
		t.Fatalf("OpenNew with chunksize=0 = %v, want InvalidArgument", err)
	}
}

func TestDispose_Idempotent(t *testing.T) {
	opts := newMemOptions(t)
	pf, err := OpenNew("disposeme.bin", 10, 10, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	if err := pf.Dispose(); err != nil {
		t.Fatalf("first Dispose: %v", err)
	}
	if err := pf.Dispose(); err != nil {
		t.Fatalf("second Dispose: %v", err)
	}
	if _, err := pf.ReadAtAlloc(0, 1); err != ErrDisposed {
		t.Fatalf("ReadAt after Dispose = %v, want ErrDisposed", err)
	}
}

func TestProgress(t *testing.T) {
	opts := newMemOptions(t)
	opts.AutoCreate = false

	pf, err := OpenNew("progress.bin", 100, 220, &opts)
	if err != nil {
		t.Fatalf("OpenNew: %v", err)
	}
	defer pf.Dispose()

	if err := pf.WriteFirst(bytesOfTest(20, 0x01), 0, 20); err != nil {
		t.Fatalf("WriteFirst: %v", err)
	}
	if err := pf.Write(1, bytesOfTest(100, 0x02), 0); err != nil {
		t.Fatalf("Write(1): %v", err)
	}

	p := pf.Progress()
	if p.ChunksWritten != 2 {
		t.Fatalf("ChunksWritten = %d, want 2", p.ChunksWritten)
	}
	if p.ChunksTotal != 3 {
		t.Fatalf("ChunksTotal = %d, want 3", p.ChunksTotal)
	}
}
