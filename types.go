package partfile

import (
	"os"

	"github.com/absfs/absfs"
)

// Sentinel values used throughout the package for "-1 = unknown".
const (
	unknown32 int32 = -1
	unknown64 int64 = -1
)

// DefaultPartExtension is the suffix appended to a filename to form the
// container's path when Options.PartExtension is left empty.
const DefaultPartExtension = ".apf"

// Options configures a Partfile. It is a plain value, cloned on
// construction: OpenNew and OpenExisting copy whatever is passed in, so
// later mutation of the caller's Options has no effect on an already-open
// Partfile.
//
// The zero value of Options is not a usable default for every field — call
// DefaultOptions to obtain one, then override only the fields that need to
// differ. A nil *Options passed to OpenNew/OpenExisting is equivalent to
// passing DefaultOptions().
type Options struct {
	// Folder is the destination directory for the completed file. Empty
	// means the current working directory.
	Folder string
	// PartFolder is the directory for the container file. Empty means the
	// OS temporary directory.
	PartFolder string
	// PartExtension is the suffix appended to Filename to form the
	// container's path. Empty means DefaultPartExtension.
	PartExtension string

	// Overwrite permits deleting a pre-existing completed file.
	Overwrite bool
	// PartOverwrite permits deleting a pre-existing container file.
	PartOverwrite bool

	// AutoCreate synthesizes the completed file as soon as Partsize is
	// reached.
	AutoCreate bool

	// DeleteOnDispose removes the completed file when Dispose runs.
	DeleteOnDispose bool
	// DeletePartOnDispose removes the container file when Dispose runs.
	DeletePartOnDispose bool
	// DeletePartOnCreate removes the container file once Create succeeds.
	DeletePartOnCreate bool
	// StayAlive keeps the completed file open (read-only) after Create so
	// GetReadStream continues to work without a second Open.
	StayAlive bool

	// FirstChunksize is the length of the first logical chunk, when known
	// in advance. unknown32 (-1) means unknown.
	FirstChunksize int32
	// LastChunksize is the length of the last logical chunk, when known in
	// advance. unknown32 (-1) means unknown.
	LastChunksize int32

	// FlushOnEveryChunk forces a durability flush after every appended
	// record.
	FlushOnEveryChunk bool

	// Parallel controls whether create() fetches chunk payloads from the
	// container with multiple concurrent readers before writing them out
	// to the completed file in order.
	Parallel ParallelConfig

	// FileSystem is the storage seam: every file operation a Partfile
	// performs goes through this interface instead of calling the os
	// package directly, so tests can substitute github.com/absfs/memfs.
	// A nil FileSystem defaults to a small os-backed adapter.
	FileSystem absfs.FileSystem

	// OnFileCreating fires just before the completed file is materialized.
	OnFileCreating func(pf *Partfile)
	// OnFileCreated fires once the completed file has been fully written.
	OnFileCreated func(pf *Partfile)
	// OnWarning fires for non-fatal conditions (duplicate writes, writes
	// after Create) instead of returning an error.
	OnWarning func(pf *Partfile, message string)
}

// DefaultOptions returns sensible defaults: current directory for Folder,
// the OS temp directory for PartFolder, ".apf" for PartExtension,
// AutoCreate/DeletePartOnCreate/StayAlive true, everything else false or
// unknown.
func DefaultOptions() Options {
	return Options{
		PartExtension:      DefaultPartExtension,
		AutoCreate:         true,
		DeletePartOnCreate: true,
		StayAlive:          true,
		FirstChunksize:     unknown32,
		LastChunksize:      unknown32,
		Parallel:           DefaultParallelConfig(),
	}
}

// resolved returns a copy of o with empty Folder/PartFolder/PartExtension
// filled in and a non-nil FileSystem, suitable for use by a Partfile.
func (o Options) resolved() (Options, error) {
	if o.PartExtension == "" {
		o.PartExtension = DefaultPartExtension
	}
	if o.Folder == "" {
		wd, err := os.Getwd()
		if err != nil {
			return o, newIoError("getwd", "", err)
		}
		o.Folder = wd
	}
	if o.PartFolder == "" {
		o.PartFolder = os.TempDir()
	}
	if o.FileSystem == nil {
		o.FileSystem = newOSFileSystem()
	}
	return o, nil
}

func (o Options) warn(pf *Partfile, message string) {
	if o.OnWarning != nil {
		o.OnWarning(pf, message)
	}
}

// Progress is a read-only snapshot of how much of a Partfile has been
// written, suitable for a progress bar or completion check without racing
// the Partfile's internal lock more than once.
type Progress struct {
	ChunksWritten int32
	ChunksTotal   int32 // -1 if geometry is still undetermined
	BytesWritten  int64
	Partsize      int64 // -1 if geometry is still undetermined
}
