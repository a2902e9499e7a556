package cbuffer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"VoxelTerrain/cliente/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRecordSizes(t *testing.T) {
	tests := []struct {
		name        string
		size, align int
		want        int
	}{
		{"object", ObjectConstantsSize, ObjectStride, 256},
		{"material", MaterialConstantsSize, MaterialStride, 256},
		{"pass", PassConstantsSize, PassStride, 1280},
	}
	for _, tt := range tests {
		if tt.align != tt.want {
			t.Errorf("%s: stride = %d, want %d", tt.name, tt.align, tt.want)
		}
		if tt.align < tt.size {
			t.Errorf("%s: stride %d menor que o registro %d", tt.name, tt.align, tt.size)
		}
		if again := gpu.AlignConstantBufferSize(tt.align); again != tt.align {
			t.Errorf("%s: alinhar de novo mudou %d para %d", tt.name, tt.align, again)
		}
	}
	if PassConstantsSize != 1248 {
		t.Errorf("PassConstantsSize = %d, want 1248", PassConstantsSize)
	}
}

func floatAt(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestPassConstantsLayout(t *testing.T) {
	p := DefaultPassConstants()
	p.EyePosW = mgl32.Vec3{1, 2, 3}
	p.NearZ, p.FarZ, p.TotalTime, p.DeltaTime = 1, 1000, 7.5, 0.016
	p.AmbientLight = mgl32.Vec4{0.25, 0.5, 0.75, 1}
	p.Lights[0].Direction = mgl32.Vec3{0.3, -0.45, 0.45}
	p.Lights[0].Strength = mgl32.Vec3{0.6, 0.6, 0.08}

	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != PassStride {
		t.Fatalf("len = %d, want %d", len(b), PassStride)
	}

	checks := []struct {
		name string
		off  int
		want float32
	}{
		{"EyePosW.x", 384, 1},
		{"EyePosW.z", 392, 3},
		{"NearZ", 416, 1},
		{"FarZ", 420, 1000},
		{"TotalTime", 424, 7.5},
		{"AmbientLight.g", 436, 0.5},
		{"Lights[0].Strength.x", 480, 0.6},
		{"Lights[0].Direction.y", 480 + 20, -0.45},
		{"Lights[1].SpotPower", 480 + LightSize + 44, 64},
	}
	for _, c := range checks {
		if got := floatAt(b, c.off); got != c.want {
			t.Errorf("%s @%d = %v, want %v", c.name, c.off, got, c.want)
		}
	}

	var back PassConstants
	if err := back.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if back != p {
		t.Errorf("pass constants diferentes depois da leitura")
	}
}

func TestMaterialConstantsLayout(t *testing.T) {
	m := MaterialConstants{
		DiffuseAlbedo: mgl32.Vec4{1, 1, 1, 0.5},
		FresnelR0:     mgl32.Vec3{0.05, 0.05, 0.05},
		Roughness:     0.2,
		MatTransform:  mgl32.Translate3D(0.1, 0.02, 0),
	}
	b, err := m.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if got := floatAt(b, 12); got != 0.5 {
		t.Errorf("alpha = %v", got)
	}
	if got := floatAt(b, 28); got != 0.2 {
		t.Errorf("roughness = %v", got)
	}
	// Translação da coluna 3 do mgl32 em m[12].
	if got := floatAt(b, 32+12*4); got != 0.1 {
		t.Errorf("MatTransform[12] = %v, want 0.1", got)
	}
}

func TestShortBuffer(t *testing.T) {
	var o ObjectConstants
	if err := o.UnmarshalBinary(make([]byte, 10)); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("Unmarshal curto: err = %v", err)
	}
	if err := o.MarshalTo(make([]byte, 10)); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("MarshalTo curto: err = %v", err)
	}
}
