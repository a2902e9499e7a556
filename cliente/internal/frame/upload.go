package frame

import (
	"fmt"

	"VoxelTerrain/cliente/internal/gpu"
)

// UploadBuffer é um array de registros num buffer de upload, endereçável por índice.
// Para constant buffers o stride é arredondado para o alinhamento mínimo.
type UploadBuffer struct {
	buf    *gpu.Buffer
	count  int
	stride int
}

// NewUploadBuffer reserva count registros de elemSize bytes.
func NewUploadBuffer(dev gpu.Device, name string, count, elemSize int, constant bool) (*UploadBuffer, error) {
	if count <= 0 {
		count = 1
	}
	stride := elemSize
	if constant {
		stride = gpu.AlignConstantBufferSize(elemSize)
	}
	buf, err := dev.CreateUploadBuffer(name, count*stride)
	if err != nil {
		return nil, fmt.Errorf("upload buffer %q: %w", name, err)
	}
	return &UploadBuffer{buf: buf, count: count, stride: stride}, nil
}

// CopyData grava data no registro i.
func (u *UploadBuffer) CopyData(i int, data []byte) error {
	if i < 0 || i >= u.count {
		return fmt.Errorf("%w: registro %d de %d em %q", gpu.ErrOutOfRange, i, u.count, u.buf.Name())
	}
	if len(data) > u.stride {
		data = data[:u.stride]
	}
	return u.buf.Write(i*u.stride, data)
}

// Address devolve o endereço de GPU do registro i: base + i*stride.
func (u *UploadBuffer) Address(i int) gpu.GPUAddress {
	return u.buf.GPUAddress() + gpu.GPUAddress(i*u.stride)
}

// Read devolve os bytes do registro i.
func (u *UploadBuffer) Read(i int) ([]byte, error) {
	if i < 0 || i >= u.count {
		return nil, fmt.Errorf("%w: registro %d de %d", gpu.ErrOutOfRange, i, u.count)
	}
	return u.buf.Bytes(i*u.stride, u.stride)
}

func (u *UploadBuffer) Stride() int         { return u.stride }
func (u *UploadBuffer) Count() int          { return u.count }
func (u *UploadBuffer) Buffer() *gpu.Buffer { return u.buf }
