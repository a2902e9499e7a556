package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedManifest(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	wantMaterials := []string{"dirt", "bedrock", "stone", "grass", "wood", "leaves", "iron", "gravel", "sand", "water"}
	mats := m.Materials()
	if len(mats) != len(wantMaterials) {
		t.Fatalf("%d materiais, want %d", len(mats), len(wantMaterials))
	}
	for i, name := range wantMaterials {
		if mats[i].Name != name {
			t.Errorf("material %d = %q, want %q", i, mats[i].Name, name)
		}
		if idx, ok := m.MaterialIndex(name); !ok || idx != i {
			t.Errorf("MaterialIndex(%q) = %d, %v", name, idx, ok)
		}
		slot, ok := m.TextureSlot(mats[i].Texture)
		if !ok || slot != i {
			t.Errorf("material %q: textura no slot %d, want %d", name, slot, i)
		}
	}

	for _, mat := range mats {
		if mat.Transparent != (mat.Name == "water") {
			t.Errorf("material %q: transparent = %v", mat.Name, mat.Transparent)
		}
	}

	if got := len(m.Quadrants()); got != 4 {
		t.Errorf("%d quadrantes, want 4", got)
	}
	tr := m.Trees()
	if tr.Max != 80 || tr.OneIn != 20 {
		t.Errorf("trees = %+v", tr)
	}
	if f := tr.Footprint; f.Left+f.Right+1 != 5 || f.Back+f.Front+1 != 4 {
		t.Errorf("footprint %+v não é 5x4", f)
	}
}

func TestManifestFromDir(t *testing.T) {
	dir := t.TempDir()

	// Sem arquivo: usa o embutido.
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Source() != "embutido" {
		t.Errorf("Source = %q", m.Source())
	}
	if got, want := m.TexturePath(m.Textures()[0]), filepath.Join(dir, "dirt.png"); got != want {
		t.Errorf("TexturePath = %q, want %q", got, want)
	}

	custom := strings.Replace(string(embeddedManifest), "max: 80", "max: 10", 1)
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err = NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Trees().Max != 10 {
		t.Errorf("trees.max = %d, want 10", m.Trees().Max)
	}
}

func TestManifestValidation(t *testing.T) {
	base := string(embeddedManifest)
	tests := []struct {
		name    string
		old     string
		new     string
		wantErr bool
	}{
		{"válido", "", "", false},
		{"textura desconhecida", "texture: waterTex", "texture: lavaTex", true},
		{"cap desconhecido", "cap: sand", "cap: lava", true},
		{"quadrantes sobrepostos", "x: [50, 99]\n    z: [0, 49]", "x: [40, 99]\n    z: [0, 49]", true},
		{"chance impossível", "one_in: 20\n  hit: 5", "one_in: 20\n  hit: 30", true},
		{"tipo de altura", "kind: fixed", "kind: spiral", true},
		{"coluna rasa", "{ kind: fixed, base: 9 }", "{ kind: fixed, base: 2 }", true},
	}

	for _, tt := range tests {
		doc := base
		if tt.old != "" {
			if !strings.Contains(doc, tt.old) {
				t.Fatalf("%s: trecho %q não encontrado no manifesto", tt.name, tt.old)
			}
			doc = strings.Replace(doc, tt.old, tt.new, 1)
		}
		_, err := Parse([]byte(doc))
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidManifest) {
			t.Errorf("%s: erro não embrulha ErrInvalidManifest: %v", tt.name, err)
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse([]byte("textures: [")); err == nil {
		t.Error("esperava erro de sintaxe")
	}
}
