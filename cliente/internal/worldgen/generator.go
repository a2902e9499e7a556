// Package worldgen gera o mundo de blocos uma única vez na inicialização: quatro quadrantes de
// colunas e as árvores do quadrante de grama, na ordem em que os render items são criados.
package worldgen

import (
	"errors"
	"fmt"
	"log"
	"time"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/materials"
	"VoxelTerrain/cliente/internal/meshing"
	"VoxelTerrain/cliente/internal/render"
	"VoxelTerrain/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrOutOfQuadrant indica um bloco fora da faixa Y ou da área XZ do seu quadrante.
var ErrOutOfQuadrant = errors.New("worldgen: bloco fora do quadrante")

// Rand é a fonte de sorteios. *math/rand.Rand satisfaz.
type Rand interface {
	Intn(n int) int
}

// roll sorteia uniformemente em [1, oneIn] e acerta quando sai hit.
func roll(rng Rand, oneIn, hit int) bool {
	return rng.Intn(oneIn)+1 == hit
}

// Column é uma coluna gerada: Blocks[y] é o material da camada y.
type Column struct {
	Quadrant string
	Blocks   []*materials.Material
}

// Height é o número de camadas da coluna (o topo fica em Height-1).
func (c *Column) Height() int { return len(c.Blocks) }

// Tree é uma árvore colocada: base do tronco e área de exclusão.
type Tree struct {
	Base      util.GridCoord
	Footprint util.GridRect
}

// World é o resultado da geração.
type World struct {
	Items   []*render.RenderItem
	Columns map[util.ColumnCoord]*Column
	Trees   []Tree
}

// Layers separa os itens em opacos e transparentes, na ordem de inserção.
func (w *World) Layers() [render.LayerCount][]*render.RenderItem {
	return render.Partition(w.Items)
}

// Column retorna a coluna em (x, z).
func (w *World) Column(x, z int) (*Column, bool) {
	c, ok := w.Columns[util.ColumnCoord{X: int32(x), Z: int32(z)}]
	return c, ok
}

// Counts conta os blocos por material.
func (w *World) Counts() map[string]int {
	out := make(map[string]int)
	for _, ri := range w.Items {
		out[ri.Mat.Name]++
	}
	return out
}

// Generator aplica as regras do manifesto sobre a geometria compartilhada.
type Generator struct {
	mgr  *assets.Manager
	mats *materials.Table
	geo  *meshing.MeshGeometry
	rng  Rand
}

// NewGenerator prepara o gerador. rng é consumido na ordem: altura, minérios e sorteio de árvore
// de cada coluna.
func NewGenerator(mgr *assets.Manager, mats *materials.Table, geo *meshing.MeshGeometry, rng Rand) *Generator {
	return &Generator{mgr: mgr, mats: mats, geo: geo, rng: rng}
}

// quadrant é um QuadrantEntry com os materiais já resolvidos.
type quadrant struct {
	assets.QuadrantEntry
	cap    *materials.Material
	bounds util.GridRect
	maxY   int // Última camada permitida (inclui a copa das árvores)
}

type palette struct {
	bedrock, fill, oreDefault *materials.Material
	ores                      []*materials.Material
	trunk, leaves             *materials.Material
}

// build é o estado de uma geração.
type build struct {
	g     *Generator
	world *World
	pal   palette
	trees assets.TreeEntry
}

func (g *Generator) material(name string) (*materials.Material, error) {
	m, ok := g.mats.Get(name)
	if !ok {
		return nil, fmt.Errorf("material %q não existe na tabela", name)
	}
	return m, nil
}

func (g *Generator) palette() (palette, error) {
	var p palette
	var err error
	strata := g.mgr.Strata()
	trees := g.mgr.Trees()

	lookup := func(dst **materials.Material, name string) {
		if err != nil {
			return
		}
		*dst, err = g.material(name)
	}
	lookup(&p.bedrock, strata.Bedrock)
	lookup(&p.fill, strata.Fill)
	lookup(&p.oreDefault, strata.OreDefault)
	if trees.Max > 0 {
		lookup(&p.trunk, trees.Trunk)
		lookup(&p.leaves, trees.Leaves)
	}
	p.ores = make([]*materials.Material, len(strata.Ores))
	for i, ore := range strata.Ores {
		lookup(&p.ores[i], ore.Material)
	}
	return p, err
}

// Generate percorre os quadrantes na ordem do manifesto, z externo e x interno.
func (g *Generator) Generate() (*World, error) {
	start := time.Now()

	pal, err := g.palette()
	if err != nil {
		return nil, err
	}
	b := &build{
		g:     g,
		world: &World{Columns: make(map[util.ColumnCoord]*Column)},
		pal:   pal,
		trees: g.mgr.Trees(),
	}

	for _, entry := range g.mgr.Quadrants() {
		q, err := g.resolveQuadrant(entry)
		if err != nil {
			return nil, err
		}
		for z := q.Z[0]; z <= q.Z[1]; z++ {
			for x := q.X[0]; x <= q.X[1]; x++ {
				if err := b.column(q, x, z); err != nil {
					return nil, err
				}
			}
		}
	}

	counts := b.world.Counts()
	log.Printf("[WorldGen] %d blocos, %d colunas, %d árvores em %v (água: %d)",
		len(b.world.Items), len(b.world.Columns), len(b.world.Trees), time.Since(start), counts["water"])
	return b.world, nil
}

func (g *Generator) resolveQuadrant(e assets.QuadrantEntry) (*quadrant, error) {
	capMat, err := g.material(e.Cap)
	if err != nil {
		return nil, fmt.Errorf("quadrante %s: %w", e.Name, err)
	}
	q := &quadrant{
		QuadrantEntry: e,
		cap:           capMat,
		bounds:        util.GridRect{MinX: int32(e.X[0]), MaxX: int32(e.X[1]), MinZ: int32(e.Z[0]), MaxZ: int32(e.Z[1])},
		maxY:          maxHeight(e.Height) - 1,
	}
	if e.Trees {
		// Tronco de 3 blocos a partir do topo e folha de cobertura logo acima.
		q.maxY += 4
	}
	return q, nil
}

func maxHeight(h assets.HeightEntry) int {
	switch h.Kind {
	case assets.HeightRange:
		return h.Base + h.Max
	case assets.HeightChance:
		return max(h.Base, h.Tall)
	default:
		return h.Base
	}
}

func (g *Generator) height(h assets.HeightEntry) int {
	switch h.Kind {
	case assets.HeightRange:
		return h.Base + h.Min + g.rng.Intn(h.Max-h.Min+1)
	case assets.HeightChance:
		if roll(g.rng, h.OneIn, h.Hit) {
			return h.Tall
		}
		return h.Base
	default:
		return h.Base
	}
}

func (b *build) ore() *materials.Material {
	for i, c := range b.g.mgr.Strata().Ores {
		if roll(b.g.rng, c.OneIn, c.Hit) {
			return b.pal.ores[i]
		}
	}
	return b.pal.oreDefault
}

func (b *build) column(q *quadrant, x, z int) error {
	strata := b.g.mgr.Strata()
	h := b.g.height(q.Height)

	col := &Column{Quadrant: q.Name, Blocks: make([]*materials.Material, h)}
	for y := 0; y < h; y++ {
		var m *materials.Material
		switch {
		case y == 0:
			m = b.pal.bedrock
		case y >= strata.OreMin && y <= strata.OreMax:
			m = b.ore()
		case y == h-1, q.CapFrom != nil && y >= *q.CapFrom:
			m = q.cap
		default:
			m = b.pal.fill
		}
		col.Blocks[y] = m
		if err := b.emit(q, util.NewGridCoord(int32(x), int32(y), int32(z)), m); err != nil {
			return err
		}
	}
	b.world.Columns[util.ColumnCoord{X: int32(x), Z: int32(z)}] = col

	if q.Trees && len(b.world.Trees) < b.trees.Max && roll(b.g.rng, b.trees.OneIn, b.trees.Hit) {
		return b.tree(q, x, h, z)
	}
	return nil
}

// emit cria o render item com o próximo índice de objeto.
func (b *build) emit(q *quadrant, c util.GridCoord, m *materials.Material) error {
	if !q.bounds.Contains(c.X, c.Z) || c.Y < 0 || int(c.Y) > q.maxY {
		return fmt.Errorf("%w: %s em %s (y até %d)", ErrOutOfQuadrant, c, q.Name, q.maxY)
	}
	ri, err := render.NewRenderItem(len(b.world.Items), util.GridToWorldPos(c), m, b.g.geo, meshing.BoxSubmesh)
	if err != nil {
		return err
	}
	b.world.Items = append(b.world.Items, ri)
	return nil
}

// canopy são as folhas em volta do topo do tronco, no sentido anti-horário a partir de +X.
var canopy = [8][2]int32{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// tree coloca uma árvore com o tronco começando em y=top se a célula for interior ao quadrante e
// a área de exclusão não tocar nenhuma árvore anterior.
func (b *build) tree(q *quadrant, x, top, z int) error {
	x32, z32 := int32(x), int32(z)
	if x32 <= q.bounds.MinX || x32 >= q.bounds.MaxX || z32 <= q.bounds.MinZ || z32 >= q.bounds.MaxZ {
		return nil
	}
	fp := b.trees.Footprint
	rect := util.NewGridRect(x32, z32, int32(fp.Left), int32(fp.Right), int32(fp.Back), int32(fp.Front))
	for _, t := range b.world.Trees {
		if t.Footprint.Overlaps(rect) {
			return nil
		}
	}

	base := util.NewGridCoord(x32, int32(top), z32)
	for dy := int32(0); dy < 3; dy++ {
		if err := b.emit(q, base.Add(util.NewGridCoord(0, dy, 0)), b.pal.trunk); err != nil {
			return err
		}
	}
	for _, off := range canopy {
		if err := b.emit(q, base.Add(util.NewGridCoord(off[0], 2, off[1])), b.pal.leaves); err != nil {
			return err
		}
	}
	if err := b.emit(q, base.Add(util.NewGridCoord(0, 3, 0)), b.pal.leaves); err != nil {
		return err
	}

	b.world.Trees = append(b.world.Trees, Tree{Base: base, Footprint: rect})
	return nil
}

// Center é o centro XZ do mundo no plano y=0, usado como alvo inicial da câmera.
func (w *World) Center() mgl32.Vec3 {
	var r util.GridRect
	first := true
	for c := range w.Columns {
		if first {
			r = util.GridRect{MinX: c.X, MaxX: c.X, MinZ: c.Z, MaxZ: c.Z}
			first = false
			continue
		}
		r.MinX, r.MaxX = min(r.MinX, c.X), max(r.MaxX, c.X)
		r.MinZ, r.MaxZ = min(r.MinZ, c.Z), max(r.MaxZ, c.Z)
	}
	return mgl32.Vec3{float32(r.MinX+r.MaxX) / 2, 0, float32(r.MinZ+r.MaxZ) / 2}
}
