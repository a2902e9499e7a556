package frame

// RingDepth é o número de frame resources em voo.
const RingDepth = 3

// Dirty conta quantos slots do anel ainda precisam receber a cópia atual de uma entidade.
// Nunca passa de RingDepth; cada cópia consome uma unidade.
type Dirty int

// NewDirty devolve uma contagem cheia: toda entidade nova precisa chegar aos três slots.
func NewDirty() Dirty { return RingDepth }

// Mark registra uma mudança: todos os slots precisam ser atualizados de novo.
func (d *Dirty) Mark() { *d = RingDepth }

// Pending indica se o slot corrente ainda deve receber uma cópia.
func (d Dirty) Pending() bool { return d > 0 }

// Consume registra a cópia para o slot corrente.
func (d *Dirty) Consume() {
	if *d > 0 {
		*d--
	}
}
