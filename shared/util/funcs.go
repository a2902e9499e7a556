package util

import "github.com/go-gl/mathgl/mgl32"

// LerpVec3 interpola componente a componente.
func LerpVec3(start, end mgl32.Vec3, amount float32) mgl32.Vec3 {
	return start.Add(end.Sub(start).Mul(amount))
}

// WrapUnit mantém uma coordenada de textura em [0, 1).
// Valores que atingem 1 voltam a subtrair 1, como um scroll contínuo.
func WrapUnit(v float32) float32 {
	for v >= 1.0 {
		v -= 1.0
	}
	for v < 0 {
		v += 1.0
	}
	return v
}

// Abs retorna o valor absoluto de um float32.
func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
