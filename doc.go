// Package partfile implements a resumable partial-file container: a single
// on-disk file ("the container") that accumulates out-of-order, fixed-size
// chunks of some logical target file, can be read at arbitrary byte
// positions while still incomplete, and can be materialized into the final
// contiguous file once every chunk has arrived.
//
// # Overview
//
// partfile is built for callers that receive a file's chunks out of order
// from an external source — a downloader, a peer-to-peer swarm, a
// reassembling transport — and need to serve random-access reads against
// the file before every chunk has arrived. The container is a single file
// on disk; nothing about chunk acquisition, network transport, or logging
// is part of this package. Callers push chunks in with Write/WriteFirst/
// WriteLast and pull bytes out with ReadAt, at any time, from any goroutine
// (subject to the locking contract described on Partfile).
//
// # Basic usage
//
//	pf, err := partfile.OpenNew("movie.mp4", 1<<20, 10*(1<<20), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pf.Dispose()
//
//	pf.WriteFirst(firstChunk, 0, len(firstChunk))
//	pf.Write(3, thirdChunk, 0)
//	pf.WriteLast(lastChunkID, lastChunk, 0, len(lastChunk))
//	// ... once every chunk has arrived, pf.Created() is true and
//	// folder/movie.mp4 holds the reassembled file.
//
// # File format
//
// The container begins with a fixed-prefix header (magic "APF", format
// version, size, boundary chunk positions/sizes, chunk size) followed by
// three length-prefixed UTF-8 strings (filename, folder, part folder). Chunk
// records follow in append order: a 4-byte little-endian chunk id followed
// by that chunk's payload. There is no on-disk index — the append order
// itself, replayed on open, reconstructs the chunk index. See header.go and
// geometry.go for the exact layout and offset arithmetic.
//
// # Concurrency
//
// One writer is expected per Partfile; concurrent writers are not
// supported. Many readers may call ReadAt concurrently with the writer and
// with each other. See the Partfile doc comment for the precise contract.
//
// # Non-goals
//
// No integrity checking of chunk payloads, no encryption, no multi-writer
// coordination, no OS sparse-file features. The wire format is defined as
// little-endian; resuming a container written on a big-endian host requires
// explicit conversion, which this package does not perform.
package partfile
