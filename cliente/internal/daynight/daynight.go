// Package daynight calcula a iluminação do ciclo dia/noite em função do tempo decorrido.
//
// O ângulo da luz percorre [-1, 1): 0 é meio-dia, 0.5 o entardecer, ±1 a meia-noite e
// -0.5 o amanhecer. Tudo aqui é função pura de (tempo, duração do dia).
package daynight

import (
	"math"
	"time"

	"VoxelTerrain/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultDayLength é a duração de um ciclo completo.
const DefaultDayLength = 60 * time.Second

// Componentes fixas da direção do sol (a componente X é o ângulo).
const (
	SunDirY float32 = -0.45
	SunDirZ float32 = 0.45
)

// Cores de referência do céu.
var (
	DeepSkyBlue          = mgl32.Vec3{0, 0.749019623, 1}
	DarkCyan             = mgl32.Vec3{0, 0.545098066, 0.545098066}
	Black                = mgl32.Vec3{0, 0, 0}
	LightGoldenrodYellow = mgl32.Vec3{0.980392218, 0.980392218, 0.823529482}
)

// Intensidades de referência do sol.
var (
	SunMidday    = mgl32.Vec3{0.6, 0.6, 0.08}
	SunMoonlight = mgl32.Vec3{0.3, 0.3, 0.3}
	SunMorning   = mgl32.Vec3{0.7, 0.25, 0}
)

type keyframe struct {
	angle float32
	value mgl32.Vec3
}

var skyKeys = []keyframe{
	{-1, Black},
	{-0.5, LightGoldenrodYellow},
	{0, DeepSkyBlue},
	{0.5, DarkCyan},
	{1, Black},
}

var sunKeys = []keyframe{
	{-1, SunMoonlight},
	{-0.75, SunMoonlight},
	{-0.65, SunMorning},
	{-0.3, SunMorning},
	{-0.2, SunMidday},
	{0.7, SunMidday},
	{0.8, SunMoonlight},
	{1, SunMoonlight},
}

// sample interpola linearmente entre os keyframes que cercam a.
func sample(keys []keyframe, a float32) mgl32.Vec3 {
	if a <= keys[0].angle {
		return keys[0].value
	}
	for i := 1; i < len(keys); i++ {
		k0, k1 := keys[i-1], keys[i]
		if a < k1.angle {
			return util.LerpVec3(k0.value, k1.value, (a-k0.angle)/(k1.angle-k0.angle))
		}
	}
	return keys[len(keys)-1].value
}

// State é a iluminação num instante.
type State struct {
	Angle        float32
	Ambient      mgl32.Vec4
	SunDirection mgl32.Vec3
	SunStrength  mgl32.Vec3
	Sky          mgl32.Vec3
}

// Dark indica a metade noturna do ciclo (entre o entardecer e o amanhecer).
func (s State) Dark() bool {
	return s.Angle > 0.5 || s.Angle < -0.5
}

// ClearColor é a cor do céu com alpha 1.
func (s State) ClearColor() mgl32.Vec4 {
	return s.Sky.Vec4(1)
}

// Off é o estado com a iluminação desligada: ambiente e sol zerados, céu mantido.
func (s State) Off() State {
	s.Ambient = mgl32.Vec4{0, 0, 0, 1}
	s.SunStrength = mgl32.Vec3{}
	return s
}

// Controller converte tempo decorrido em State.
type Controller struct {
	DayLength time.Duration
}

// New cria o controlador; dayLength <= 0 usa DefaultDayLength.
func New(dayLength time.Duration) Controller {
	if dayLength <= 0 {
		dayLength = DefaultDayLength
	}
	return Controller{DayLength: dayLength}
}

// Angle devolve o ângulo em [-1, 1) para o tempo decorrido. O ciclo começa ao meio-dia.
func (c Controller) Angle(elapsed time.Duration) float32 {
	day := c.DayLength
	if day <= 0 {
		day = DefaultDayLength
	}
	phase := math.Mod(elapsed.Seconds()/day.Seconds()+0.5, 1)
	if phase < 0 {
		phase++
	}
	a := float32(phase*2 - 1)
	if a >= 1 {
		a = -1
	}
	return a
}

// At devolve a iluminação no instante elapsed.
func (c Controller) At(elapsed time.Duration) State {
	a := c.Angle(elapsed)
	amb := 1 - util.Abs(a)
	return State{
		Angle:        a,
		Ambient:      mgl32.Vec4{amb, amb, amb, 1},
		SunDirection: mgl32.Vec3{a, SunDirY, SunDirZ},
		SunStrength:  sample(sunKeys, a),
		Sky:          sample(skyKeys, a),
	}
}
