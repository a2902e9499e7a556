package worldgen

import (
	"errors"
	"math/rand"
	"testing"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/gpu/headless"
	"VoxelTerrain/cliente/internal/materials"
	"VoxelTerrain/cliente/internal/meshing"
	"VoxelTerrain/cliente/internal/render"
	"VoxelTerrain/shared/util"
)

// script devolve sorteios 1-based na ordem dada; esgotado, devolve sempre o maior valor.
type script struct {
	t     *testing.T
	draws []int
	hook  func(n int) (int, bool)
}

func (s *script) Intn(n int) int {
	if len(s.draws) > 0 {
		d := s.draws[0]
		s.draws = s.draws[1:]
		if d < 1 || d > n {
			s.t.Fatalf("sorteio %d fora de [1, %d]", d, n)
		}
		return d - 1
	}
	if s.hook != nil {
		if d, ok := s.hook(n); ok {
			return d - 1
		}
	}
	return n - 1
}

func (s *script) done() {
	s.t.Helper()
	if len(s.draws) != 0 {
		s.t.Errorf("%d sorteios não consumidos: %v", len(s.draws), s.draws)
	}
}

func newGenerator(t *testing.T, rng Rand) *Generator {
	t.Helper()
	dev := headless.New(headless.Options{})
	t.Cleanup(func() { dev.Close() })

	mgr, err := assets.NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	mats, err := materials.NewTable(mgr)
	if err != nil {
		t.Fatal(err)
	}
	geo, err := meshing.BuildBoxGeometry(dev, 0)
	if err != nil {
		t.Fatal(err)
	}
	return NewGenerator(mgr, mats, geo, rng)
}

// newBuild prepara uma geração vazia para testar colunas isoladas.
func newBuild(t *testing.T, g *Generator) (*build, map[string]*quadrant) {
	t.Helper()
	pal, err := g.palette()
	if err != nil {
		t.Fatal(err)
	}
	b := &build{g: g, world: &World{Columns: make(map[util.ColumnCoord]*Column)}, pal: pal, trees: g.mgr.Trees()}
	qs := make(map[string]*quadrant)
	for _, e := range g.mgr.Quadrants() {
		q, err := g.resolveQuadrant(e)
		if err != nil {
			t.Fatal(err)
		}
		qs[e.Name] = q
	}
	return b, qs
}

func names(c *Column) []string {
	out := make([]string, len(c.Blocks))
	for i, m := range c.Blocks {
		out[i] = m.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestColumns(t *testing.T) {
	tests := []struct {
		name     string
		quadrant string
		x, z     int
		draws    []int
		want     []string
	}{
		{
			name:     "grass baixa com minérios sorteados",
			quadrant: "grass", x: 10, z: 10,
			// altura 1; camada 1 gravel; camada 2 iron; camada 3 stone; sem árvore
			draws: []int{1, 2, 1, 2, 1, 1, 1},
			want:  []string{"bedrock", "gravel", "iron", "stone", "dirt", "dirt", "dirt", "dirt", "grass"},
		},
		{
			name:     "grass alta",
			quadrant: "grass", x: 10, z: 10,
			draws: []int{2, 1, 1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "dirt", "grass"},
		},
		{
			name:     "sand com sorteio alto",
			quadrant: "sand", x: 60, z: 60,
			draws: []int{2, 1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "dirt", "sand"},
		},
		{
			name:     "sand sem sorteio alto",
			quadrant: "sand", x: 60, z: 60,
			draws: []int{7, 1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "sand"},
		},
		{
			name:     "gravel cobre a partir da camada 8",
			quadrant: "gravel", x: 70, z: 20,
			draws: []int{3, 1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "gravel", "gravel", "gravel"},
		},
		{
			name:     "gravel baixa",
			quadrant: "gravel", x: 70, z: 20,
			draws: []int{1, 1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "gravel"},
		},
		{
			name:     "water tem altura fixa",
			quadrant: "water", x: 5, z: 80,
			draws: []int{1, 1, 1, 1, 1, 1},
			want:  []string{"bedrock", "stone", "stone", "stone", "dirt", "dirt", "dirt", "dirt", "water"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &script{t: t, draws: append([]int(nil), tt.draws...)}
			b, qs := newBuild(t, newGenerator(t, rng))

			if err := b.column(qs[tt.quadrant], tt.x, tt.z); err != nil {
				t.Fatal(err)
			}
			rng.done()

			col, ok := b.world.Column(tt.x, tt.z)
			if !ok {
				t.Fatal("coluna não registrada")
			}
			if got := names(col); !equal(got, tt.want) {
				t.Errorf("coluna = %v, want %v", got, tt.want)
			}
			if len(b.world.Items) != len(tt.want) {
				t.Errorf("%d itens, want %d", len(b.world.Items), len(tt.want))
			}
			for y, ri := range b.world.Items {
				pos := ri.World.Col(3)
				if int(pos.X()) != tt.x || int(pos.Y()) != y || int(pos.Z()) != tt.z {
					t.Errorf("item %d em %v", y, pos)
				}
			}
		})
	}
}

func TestWaterIsTheOnlyTransparentLayer(t *testing.T) {
	rng := &script{t: t, draws: []int{1, 1, 1, 1, 1, 1}}
	b, qs := newBuild(t, newGenerator(t, rng))
	if err := b.column(qs["water"], 0, 99); err != nil {
		t.Fatal(err)
	}

	layers := b.world.Layers()
	if len(layers[render.LayerTransparent]) != 1 {
		t.Fatalf("%d itens transparentes", len(layers[render.LayerTransparent]))
	}
	top := layers[render.LayerTransparent][0]
	if top.Mat.Name != "water" || top.World.Col(3).Y() != 8 {
		t.Errorf("transparente = %s em y=%v", top.Mat.Name, top.World.Col(3).Y())
	}
}

func TestTreeStructure(t *testing.T) {
	// altura 2 (topo 10), três camadas de stone, sorteio de árvore acerta (5)
	rng := &script{t: t, draws: []int{2, 1, 1, 1, 1, 1, 1, 5}}
	b, qs := newBuild(t, newGenerator(t, rng))
	if err := b.column(qs["grass"], 20, 20); err != nil {
		t.Fatal(err)
	}
	rng.done()

	if len(b.world.Trees) != 1 {
		t.Fatalf("%d árvores", len(b.world.Trees))
	}
	tree := b.world.Trees[0]
	if tree.Base != util.NewGridCoord(20, 10, 20) {
		t.Errorf("base = %s", tree.Base)
	}
	if tree.Footprint.Width() != 5 || tree.Footprint.Depth() != 4 {
		t.Errorf("área %s não é 5x4", tree.Footprint)
	}

	items := b.world.Items[10:]
	if len(items) != 12 {
		t.Fatalf("árvore com %d blocos", len(items))
	}
	wood, leaves := 0, 0
	for _, ri := range items {
		pos := ri.World.Col(3)
		switch ri.Mat.Name {
		case "wood":
			wood++
			if pos.X() != 20 || pos.Z() != 20 {
				t.Errorf("tronco fora do eixo: %v", pos)
			}
		case "leaves":
			leaves++
			if !tree.Footprint.Contains(int32(pos.X()), int32(pos.Z())) {
				t.Errorf("folha %v fora da área de exclusão", pos)
			}
		}
	}
	if wood != 3 || leaves != 9 {
		t.Errorf("wood=%d leaves=%d", wood, leaves)
	}
	if top := items[len(items)-1].World.Col(3); top.Y() != 13 {
		t.Errorf("folha de cobertura em y=%v", top.Y())
	}
}

func TestTreeRejections(t *testing.T) {
	b, qs := newBuild(t, newGenerator(t, &script{t: t}))
	grass := qs["grass"]

	// Bordas do quadrante não recebem árvore.
	for _, c := range [][2]int{{0, 10}, {49, 10}, {10, 0}, {10, 49}} {
		if err := b.tree(grass, c[0], 9, c[1]); err != nil {
			t.Fatal(err)
		}
	}
	if len(b.world.Trees) != 0 {
		t.Fatalf("árvore colocada na borda: %v", b.world.Trees)
	}

	if err := b.tree(grass, 10, 9, 10); err != nil {
		t.Fatal(err)
	}
	// Áreas que tocam a primeira em qualquer célula são recusadas.
	for _, c := range [][2]int{{14, 10}, {6, 10}, {10, 13}, {10, 8}, {13, 12}} {
		if err := b.tree(grass, c[0], 9, c[1]); err != nil {
			t.Fatal(err)
		}
	}
	if len(b.world.Trees) != 1 {
		t.Errorf("%d árvores, want 1", len(b.world.Trees))
	}

	if err := b.tree(grass, 15, 9, 10); err != nil {
		t.Fatal(err)
	}
	if len(b.world.Trees) != 2 {
		t.Errorf("árvore vizinha sem sobreposição recusada")
	}
}

func TestEmitRejectsOutOfQuadrant(t *testing.T) {
	b, qs := newBuild(t, newGenerator(t, &script{t: t}))
	stone := b.pal.oreDefault

	for _, c := range []util.GridCoord{
		util.NewGridCoord(50, 1, 1), // X do quadrante gravel
		util.NewGridCoord(1, 15, 1), // acima da copa
		util.NewGridCoord(1, -1, 1), // abaixo da bedrock
		util.NewGridCoord(1, 1, 50), // Z do quadrante water
	} {
		if err := b.emit(qs["grass"], c, stone); !errors.Is(err, ErrOutOfQuadrant) {
			t.Errorf("emit(%s) = %v", c, err)
		}
	}
	if len(b.world.Items) != 0 {
		t.Errorf("itens criados apesar do erro")
	}
}

func TestGenerateDeterministicMaxDraws(t *testing.T) {
	// Sempre o maior sorteio: grass 10, sand 9, gravel 11, water 9, sem minério e sem árvore.
	w, err := newGenerator(t, &script{t: t}).Generate()
	if err != nil {
		t.Fatal(err)
	}

	if len(w.Columns) != 100*100 {
		t.Fatalf("%d colunas", len(w.Columns))
	}
	if want := 2500 * (10 + 9 + 11 + 9); len(w.Items) != want {
		t.Errorf("%d itens, want %d", len(w.Items), want)
	}
	if len(w.Trees) != 0 {
		t.Errorf("%d árvores", len(w.Trees))
	}

	counts := w.Counts()
	if counts["water"] != 2500 || counts["bedrock"] != 10000 || counts["gravel"] != 3*2500 {
		t.Errorf("contagens = %v", counts)
	}
	if c := w.Center(); c.X() != 49.5 || c.Z() != 49.5 {
		t.Errorf("centro = %v", c)
	}
}

func TestGenerateInvariants(t *testing.T) {
	w, err := newGenerator(t, rand.New(rand.NewSource(42))).Generate()
	if err != nil {
		t.Fatal(err)
	}

	for c, col := range w.Columns {
		if col.Blocks[0].Name != "bedrock" {
			t.Fatalf("coluna %s começa com %s", c, col.Blocks[0].Name)
		}
	}

	for i, ri := range w.Items {
		if ri.ObjCBIndex != i {
			t.Fatalf("item %d com índice %d", i, ri.ObjCBIndex)
		}
		if (ri.Mat.Name == "water") != (ri.Layer() == render.LayerTransparent) {
			t.Fatalf("item %d (%s) na camada %s", i, ri.Mat.Name, ri.Layer())
		}
	}

	if len(w.Trees) > 80 {
		t.Errorf("%d árvores", len(w.Trees))
	}
	for i := range w.Trees {
		for j := i + 1; j < len(w.Trees); j++ {
			if w.Trees[i].Footprint.Overlaps(w.Trees[j].Footprint) {
				t.Errorf("árvores %d e %d se sobrepõem: %s %s", i, j, w.Trees[i].Footprint, w.Trees[j].Footprint)
			}
		}
	}
}

func TestTreeCountIsCapped(t *testing.T) {
	// Sorteio de árvore sempre acerta: o limite de 80 é o que encerra a colocação.
	rng := &script{t: t, hook: func(n int) (int, bool) {
		if n == 20 {
			return 5, true
		}
		return 0, false
	}}
	w, err := newGenerator(t, rng).Generate()
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Trees) != 80 {
		t.Errorf("%d árvores, want 80", len(w.Trees))
	}
	for _, tree := range w.Trees {
		col, _ := w.Column(int(tree.Base.X), int(tree.Base.Z))
		if col.Quadrant != "grass" || int(tree.Base.Y) != col.Height() {
			t.Errorf("árvore em %s sobre coluna %s de altura %d", tree.Base, col.Quadrant, col.Height())
		}
	}
}
