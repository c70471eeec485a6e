package partfile

import "testing"

func TestCalculateGeometry_BothUnknown(t *testing.T) {
	g, err := calculateGeometry(64, 220, 100, unknown32, unknown32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ChunksTotal != unknown32 || g.Partsize != unknown64 {
		t.Fatalf("expected undetermined geometry, got %+v", g)
	}
}

func TestCalculateGeometry_Scenario1(t *testing.T) {
	// open_new("t", chunksize=100, size=220, first=20)
	g, err := calculateGeometry(64, 220, 100, 20, unknown32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.LastChunksize != 100 {
		t.Fatalf("expected derived last_chunksize=100, got %d", g.LastChunksize)
	}
	if g.ChunksTotal != 3 {
		t.Fatalf("expected chunks_total=3, got %d", g.ChunksTotal)
	}
	wantPartsize := int64(64) + 4*3 + 20 + 100 + int64(3-2)*100
	if g.Partsize != wantPartsize {
		t.Fatalf("partsize = %d, want %d", g.Partsize, wantPartsize)
	}
}

func TestCalculateGeometry_Scenario3_SingleChunk(t *testing.T) {
	// open_new("t3", chunksize=10, size=10); write_first(10 bytes)
	g, err := calculateGeometry(64, 10, 10, 10, unknown32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ChunksTotal != 1 {
		t.Fatalf("chunks_total = %d, want 1", g.ChunksTotal)
	}
	if want := int64(64) + 14; g.Partsize != want {
		t.Fatalf("partsize = %d, want %d", g.Partsize, want)
	}
}

func TestCalculateGeometry_TwoChunk(t *testing.T) {
	g, err := calculateGeometry(64, 30, 100, 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ChunksTotal != 2 {
		t.Fatalf("chunks_total = %d, want 2", g.ChunksTotal)
	}
	if want := int64(64) + 8 + 20 + 10; g.Partsize != want {
		t.Fatalf("partsize = %d, want %d", g.Partsize, want)
	}
}

func TestCalculateGeometry_Scenario6(t *testing.T) {
	// open_new(..., chunksize=100, size=250, first=20, last=30)
	g, err := calculateGeometry(64, 250, 100, 20, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ChunksTotal != 4 {
		t.Fatalf("chunks_total = %d, want 4", g.ChunksTotal)
	}
	want := int64(64) + 4*4 + 20 + 30 + 2*100
	if g.Partsize != want {
		t.Fatalf("partsize = %d, want %d", g.Partsize, want)
	}
}

func TestCalculateGeometry_InvalidMiddleSpan(t *testing.T) {
	_, err := calculateGeometry(64, 253, 100, 20, 30)
	if !IsInvalidGeometry(err) {
		t.Fatalf("expected InvalidGeometry, got %v", err)
	}
}

func TestCalculateGeometry_DerivedFirstFromLast(t *testing.T) {
	// Scenario 2: chunksize=10, size=25, last established as 10 via first write.
	g, err := calculateGeometry(64, 25, 10, unknown32, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.FirstChunksize != 5 {
		t.Fatalf("derived first_chunksize = %d, want 5", g.FirstChunksize)
	}
}

func TestGeometryCapacity(t *testing.T) {
	g, err := calculateGeometry(64, 250, 100, 20, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c := g.Capacity(0); c != 20 {
		t.Fatalf("capacity(0) = %d, want 20", c)
	}
	if c := g.Capacity(g.ChunksTotal - 1); c != 30 {
		t.Fatalf("capacity(last) = %d, want 30", c)
	}
	if c := g.Capacity(1); c != 100 {
		t.Fatalf("capacity(middle) = %d, want 100", c)
	}
}

func TestChunkOffset(t *testing.T) {
	g, err := calculateGeometry(64, 250, 100, 20, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// ordinals: first appended at 0, two middles/last at 1..3, in this test
	// we assume first=0, last=3 (chunks_total-1).
	firstChunkpos := int32(0)
	lastChunkpos := int32(3)

	if off := chunkOffset(g, 0, firstChunkpos, lastChunkpos); off != g.HeadersSize+4 {
		t.Fatalf("offset(0) = %d, want %d", off, g.HeadersSize+4)
	}
	wantMiddle := g.HeadersSize + 4 + (4 + 20)
	if off := chunkOffset(g, 1, firstChunkpos, lastChunkpos); off != wantMiddle {
		t.Fatalf("offset(1) = %d, want %d", off, wantMiddle)
	}
}
