package render

// Mode é o pipeline state escolhido para o frame inteiro.
type Mode int

const (
	ModeDefault Mode = iota // Passo padrão (transparent, ou opaque se configurado)
	ModeWireframe
	ModeCullFront
	ModeCullNone
)

func (m Mode) String() string {
	switch m {
	case ModeWireframe:
		return "wireframe"
	case ModeCullFront:
		return "cull-front"
	case ModeCullNone:
		return "cull-none"
	default:
		return "default"
	}
}

// ModeInput são as teclas de modo mantidas pressionadas neste frame.
type ModeInput struct {
	Wireframe bool // Tecla 1
	CullFront bool // Tecla 2
	CullNone  bool // Tecla 3
}

// SelectMode aplica a prioridade wireframe > cull-front > cull-none > padrão.
func SelectMode(in ModeInput) Mode {
	switch {
	case in.Wireframe:
		return ModeWireframe
	case in.CullFront:
		return ModeCullFront
	case in.CullNone:
		return ModeCullNone
	default:
		return ModeDefault
	}
}
