package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"VoxelTerrain/shared/pkg/protowire"
)

func TestCodecRoundTrip(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	in := []Sample{
		{}, // todos os campos zero
		{Frame: 1, Slot: 1, Fence: 1, FenceWait: 1500 * time.Microsecond, Draws: 42, ObjectCopies: 42, MaterialCopies: 10, Mode: "transparent", Lighting: true, Angle: -0.5},
		{Frame: 2, Slot: 2, Fence: 2, Draws: 42, Mode: "opaque_wireframe", Angle: 0.25},
	}
	out, err := c.Decode(c.Encode(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("%d amostras, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("amostra %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	e := protowire.NewEncoder()
	e.Uvarint(fieldFrame, 7)
	e.String(99, "campo novo")
	e.Float32(98, 3)

	s, err := decodeSample(e.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if s.Frame != 7 {
		t.Errorf("Frame = %d, want 7", s.Frame)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c, err := newCodec()
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Decode([]byte("não é zstd")); err == nil {
		t.Error("blob inválido aceito")
	}
}

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "frames.db")
	j, err := Open(Options{Path: path, Session: "s1", Backend: "headless", Seed: 42, BatchSize: 8, Capacity: 256})
	if err != nil {
		t.Fatal(err)
	}

	const n = 100
	for i := 1; i <= n; i++ {
		if err := j.Record(Sample{Frame: uint64(i), Slot: i % 3, Fence: uint64(i), Draws: 10}); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("segundo Close: %v", err)
	}
	if err := j.Record(Sample{Frame: n + 1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Record depois de Close: got %v, want ErrClosed", err)
	}
	if j.Written() != n || j.Dropped() != 0 {
		t.Errorf("written=%d dropped=%d, want %d/0", j.Written(), j.Dropped(), n)
	}

	got, err := Load(path, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != n {
		t.Fatalf("Load: %d amostras, want %d", len(got), n)
	}
	for i, s := range got {
		if s.Frame != uint64(i+1) {
			t.Fatalf("amostra %d fora de ordem: frame %d", i, s.Frame)
		}
	}

	sessions, err := Sessions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("%d sessões, want 1", len(sessions))
	}
	if s := sessions[0]; s.Frames != n || s.EndedAt == nil || s.Seed != 42 {
		t.Errorf("sessão gravada: %+v", s)
	}
}

func TestRecordDropsWhenFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.db")
	// Lote maior que a capacidade: o escritor só acorda pelo ticker.
	j, err := Open(Options{Path: path, Session: "cheio", BatchSize: 1000, Capacity: 4, FlushEvery: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		j.Record(Sample{Frame: uint64(i)})
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}
	if j.Written() != 4 || j.Dropped() != 6 {
		t.Errorf("written=%d dropped=%d, want 4/6", j.Written(), j.Dropped())
	}
}
