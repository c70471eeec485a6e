package partfile

// geometry is the computed layout of a container: how many logical chunks
// the target file is split into, how large the container will be once
// every chunk has arrived, and the boundary chunk sizes once they are
// known. It is recomputed (cheaply — it's arithmetic, not I/O) every time a
// boundary chunk size becomes known.
type geometry struct {
	HeadersSize    int64
	Size           int64
	Chunksize      int32
	FirstChunksize int32
	LastChunksize  int32
	ChunksTotal    int32 // unknown32 if undetermined
	Partsize       int64 // unknown64 if undetermined
}

// calculateGeometry decides the chunk layout from size, chunksize, and
// whatever boundary chunk sizes are already known. headersSize, size and
// chunksize are always known; first/last chunksize may be unknown32.
//
// The middle-span chunk count intentionally reproduces a subtract-one-
// before-divide expression rather than a plain division: when szLeft is an
// exact multiple of chunksize — which the preceding check guarantees —
// (szLeft-1)/chunksize+1 and szLeft/chunksize agree, so the expression is
// not actually off by one in the only reachable case, just unusual-looking.
func calculateGeometry(headersSize, size int64, chunksize, first, last int32) (geometry, error) {
	g := geometry{HeadersSize: headersSize, Size: size, Chunksize: chunksize, FirstChunksize: first, LastChunksize: last}

	firstKnown := first != unknown32
	lastKnown := last != unknown32

	if !firstKnown && !lastKnown {
		g.ChunksTotal = unknown32
		g.Partsize = unknown64
		return g, nil
	}

	if !firstKnown && lastKnown {
		derived := int32((size - int64(last)) % int64(chunksize))
		if derived == 0 {
			derived = chunksize
		}
		first = derived
		g.FirstChunksize = first
		firstKnown = true
	}

	if firstKnown && int64(first) == size {
		g.ChunksTotal = 1
		g.Partsize = headersSize + 4 + int64(first)
		return g, nil
	}

	if firstKnown && !lastKnown {
		derived := int32((size - int64(first)) % int64(chunksize))
		if derived == 0 {
			derived = chunksize
		}
		last = derived
		g.LastChunksize = last
		lastKnown = true
	}

	if size == int64(first)+int64(last) {
		g.ChunksTotal = 2
		g.Partsize = headersSize + 8 + int64(first) + int64(last)
		return g, nil
	}

	szLeft := size - (int64(first) + int64(last))
	if szLeft <= 0 || szLeft%int64(chunksize) != 0 {
		return g, newInvalidGeometry(size, chunksize, first, last,
			"middle span is not a positive multiple of chunksize")
	}

	middleCount := (szLeft-1)/int64(chunksize) + 1
	g.ChunksTotal = int32(2 + middleCount)
	g.Partsize = headersSize + 4*int64(g.ChunksTotal) + int64(first) + int64(last) + (int64(g.ChunksTotal)-2)*int64(chunksize)
	return g, nil
}

// Capacity returns the payload length of the logical chunk at id, given the
// already-resolved geometry. Requires g.ChunksTotal to be determinate.
func (g geometry) Capacity(id int32) int32 {
	switch {
	case id == 0:
		return g.FirstChunksize
	case id == g.ChunksTotal-1:
		return g.LastChunksize
	default:
		return g.Chunksize
	}
}

// chunkOffset computes the physical file offset of the payload belonging to
// the chunk appended at ordinal position pos, given the ordinals at which
// the first and last logical chunks were appended (unknown32 if not yet
// written): skip the header and the 4-byte id prefix of the first record,
// then add the framed size of every record already on disk ahead of pos,
// accounting for the two boundary records separately since their payload
// length can differ from chunksize.
func chunkOffset(g geometry, pos, firstChunkpos, lastChunkpos int32) int64 {
	filePos := g.HeadersSize + 4

	passedFirst := firstChunkpos != unknown32 && pos > firstChunkpos
	passedLast := lastChunkpos != unknown32 && pos > lastChunkpos

	if passedFirst {
		filePos += 4 + int64(g.FirstChunksize)
	}
	if passedLast {
		filePos += 4 + int64(g.LastChunksize)
	}

	chunksLeft := int64(pos)
	if passedFirst {
		chunksLeft--
	}
	if passedLast {
		chunksLeft--
	}
	filePos += chunksLeft * (int64(g.Chunksize) + 4)

	return filePos
}
