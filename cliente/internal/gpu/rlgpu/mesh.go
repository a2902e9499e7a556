package rlgpu

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"VoxelTerrain/cliente/internal/gpu"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Layout do vértice: posição (3 floats), normal (3 floats), UV (2 floats).
const vertexFloats = 8

type meshKey struct {
	vb, ib gpu.GPUAddress
	args   gpu.DrawArgs
}

// meshFor devolve a malha raylib do intervalo de índices do draw, criando-a na primeira vez.
// O raylib desenha malhas inteiras, então cada sub-mesh vira uma malha não indexada.
func (d *Device) meshFor(call *gpu.DrawCall) (rl.Mesh, error) {
	vb, ib := call.VertexBuffer, call.IndexBuffer
	if vb.Buffer == nil || ib.Buffer == nil {
		return rl.Mesh{}, fmt.Errorf("%w: draw sem vertex/index buffer", gpu.ErrOutOfRange)
	}
	if vb.Stride != vertexFloats*4 {
		return rl.Mesh{}, fmt.Errorf("stride de vértice %d não suportado", vb.Stride)
	}

	key := meshKey{vb: vb.Buffer.GPUAddress(), ib: ib.Buffer.GPUAddress(), args: call.Args}
	if mesh, ok := d.meshes[key]; ok {
		return mesh, nil
	}

	args := call.Args
	idxBytes, err := ib.Buffer.Bytes(int(args.StartIndex)*ib.Format.Size(), int(args.IndexCount)*ib.Format.Size())
	if err != nil {
		return rl.Mesh{}, err
	}
	vtxBytes, err := vb.Buffer.Bytes(0, vb.Size)
	if err != nil {
		return rl.Mesh{}, err
	}
	vertexCount := vb.Size / vb.Stride

	count := int(args.IndexCount)
	positions := make([]float32, 0, count*3)
	normals := make([]float32, 0, count*3)
	uvs := make([]float32, 0, count*2)

	for i := 0; i < count; i++ {
		var idx int
		if ib.Format == gpu.IndexUint32 {
			idx = int(binary.LittleEndian.Uint32(idxBytes[i*4:]))
		} else {
			idx = int(binary.LittleEndian.Uint16(idxBytes[i*2:]))
		}
		idx += int(args.BaseVertex)
		if idx < 0 || idx >= vertexCount {
			return rl.Mesh{}, fmt.Errorf("%w: índice %d com %d vértices", gpu.ErrOutOfRange, idx, vertexCount)
		}

		base := idx * vb.Stride
		var f [vertexFloats]float32
		for k := range f {
			f[k] = math.Float32frombits(binary.LittleEndian.Uint32(vtxBytes[base+k*4:]))
		}
		positions = append(positions, f[0], f[1], f[2])
		normals = append(normals, f[3], f[4], f[5])
		uvs = append(uvs, f[6], f[7])
	}

	var mesh rl.Mesh
	mesh.VertexCount = int32(count)
	mesh.TriangleCount = int32(count / 3)
	mesh.Vertices = (*float32)(copyToC(unsafe.Pointer(&positions[0]), len(positions)*4))
	mesh.Normals = (*float32)(copyToC(unsafe.Pointer(&normals[0]), len(normals)*4))
	mesh.Texcoords = (*float32)(copyToC(unsafe.Pointer(&uvs[0]), len(uvs)*4))
	rl.UploadMesh(&mesh, false)

	d.meshes[key] = mesh
	return mesh, nil
}

// copyToC copia dados Go para memória C: o raylib guarda os ponteiros da malha.
func copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(ptr), size), unsafe.Slice((*byte)(data), size))
	return ptr
}

// freeMesh descarrega a malha da GPU; o UnloadMesh libera também os arrays alocados com malloc.
func freeMesh(mesh *rl.Mesh) {
	rl.UnloadMesh(mesh)
}
