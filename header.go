package partfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Container header layout. All multi-byte
// integers are little-endian.
//
//	offset  bytes  field
//	0       3      magic "APF"
//	3       4      format major version (int32)
//	7       4      format minor version (int32)
//	11      8      size (int64)
//	19      4      first_chunkpos (int32, -1 if unknown)
//	23      4      first_chunksize (int32, -1 if unknown)
//	27      4      last_chunkpos (int32, -1 if unknown)
//	31      4      last_chunksize (int32, -1 if unknown)
//	35      4      chunksize (int32)
//	39      4+N1   filename (int32 length + bytes)
//	...     4+N2   folder
//	...     4+N3   part_folder
//
// headersSize is the ending offset of the part_folder string; chunk records
// begin immediately after it.
const (
	magicBytes = "APF"

	formatMajor int32 = 1
	formatMinor int32 = 0

	offMagic          = 0
	offMajor          = 3
	offMinor          = 7
	offSize           = 11
	offFirstChunkpos  = 19
	offFirstChunksize = 23
	offLastChunkpos   = 27
	offLastChunksize  = 31
	offChunksize      = 35
	offStrings        = 39

	// fixedHeaderSize is the size of everything before the three strings.
	fixedHeaderSize = offStrings
)

// header is the in-memory form of the container header.
type header struct {
	Size           int64
	FirstChunkpos  int32
	FirstChunksize int32
	LastChunkpos   int32
	LastChunksize  int32
	Chunksize      int32
	Filename       string
	Folder         string
	PartFolder     string
}

// WriteTo serializes the header to w and returns headersSize, the number of
// bytes written.
func (h *header) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	buf.WriteString(magicBytes)
	if err := binary.Write(buf, binary.LittleEndian, formatMajor); err != nil {
		return 0, fmt.Errorf("partfile: write format major: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, formatMinor); err != nil {
		return 0, fmt.Errorf("partfile: write format minor: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.Size); err != nil {
		return 0, fmt.Errorf("partfile: write size: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.FirstChunkpos); err != nil {
		return 0, fmt.Errorf("partfile: write first chunkpos: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.FirstChunksize); err != nil {
		return 0, fmt.Errorf("partfile: write first chunksize: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.LastChunkpos); err != nil {
		return 0, fmt.Errorf("partfile: write last chunkpos: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.LastChunksize); err != nil {
		return 0, fmt.Errorf("partfile: write last chunksize: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.Chunksize); err != nil {
		return 0, fmt.Errorf("partfile: write chunksize: %w", err)
	}

	for _, s := range []string{h.Filename, h.Folder, h.PartFolder} {
		if err := binary.Write(buf, binary.LittleEndian, int32(len(s))); err != nil {
			return 0, fmt.Errorf("partfile: write string length: %w", err)
		}
		if _, err := buf.WriteString(s); err != nil {
			return 0, fmt.Errorf("partfile: write string: %w", err)
		}
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom parses the header from r and returns headersSize.
func (h *header) ReadFrom(r io.Reader) (int64, error) {
	var total int64

	magic := make([]byte, 3)
	if _, err := io.ReadFull(r, magic); err != nil {
		return total, fmt.Errorf("partfile: read magic: %w", err)
	}
	total += 3
	if string(magic) != magicBytes {
		return total, newInvalidFormat("", fmt.Sprintf("bad magic %q", magic))
	}

	var major, minor int32
	if err := binary.Read(r, binary.LittleEndian, &major); err != nil {
		return total, fmt.Errorf("partfile: read format major: %w", err)
	}
	total += 4
	if err := binary.Read(r, binary.LittleEndian, &minor); err != nil {
		return total, fmt.Errorf("partfile: read format minor: %w", err)
	}
	total += 4
	// Version is written but not consulted on read: any major is
	// accepted.

	if err := binary.Read(r, binary.LittleEndian, &h.Size); err != nil {
		return total, fmt.Errorf("partfile: read size: %w", err)
	}
	total += 8
	if err := binary.Read(r, binary.LittleEndian, &h.FirstChunkpos); err != nil {
		return total, fmt.Errorf("partfile: read first chunkpos: %w", err)
	}
	total += 4
	if err := binary.Read(r, binary.LittleEndian, &h.FirstChunksize); err != nil {
		return total, fmt.Errorf("partfile: read first chunksize: %w", err)
	}
	total += 4
	if err := binary.Read(r, binary.LittleEndian, &h.LastChunkpos); err != nil {
		return total, fmt.Errorf("partfile: read last chunkpos: %w", err)
	}
	total += 4
	if err := binary.Read(r, binary.LittleEndian, &h.LastChunksize); err != nil {
		return total, fmt.Errorf("partfile: read last chunksize: %w", err)
	}
	total += 4
	if err := binary.Read(r, binary.LittleEndian, &h.Chunksize); err != nil {
		return total, fmt.Errorf("partfile: read chunksize: %w", err)
	}
	total += 4

	strs := make([]*string, 3)
	strs[0], strs[1], strs[2] = &h.Filename, &h.Folder, &h.PartFolder
	for _, dst := range strs {
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return total, fmt.Errorf("partfile: read string length: %w", err)
		}
		total += 4
		if n < 0 {
			return total, newInvalidFormat("", "negative string length in header")
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return total, fmt.Errorf("partfile: read string: %w", err)
		}
		total += int64(n)
		*dst = string(b)
	}

	return total, nil
}
