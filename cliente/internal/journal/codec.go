package journal

import (
	"fmt"
	"time"

	"VoxelTerrain/shared/pkg/protowire"

	"github.com/klauspost/compress/zstd"
)

// Sample é o registro de um frame.
type Sample struct {
	Frame          uint64
	Slot           int
	Fence          uint64
	FenceWait      time.Duration
	Draws          int
	ObjectCopies   int
	MaterialCopies int
	Mode           string
	Lighting       bool
	Angle          float32 // Ângulo do ciclo dia/noite
}

// Campos do registro.
const (
	fieldFrame protowire.Number = iota + 1
	fieldSlot
	fieldFence
	fieldFenceWait
	fieldDraws
	fieldObjectCopies
	fieldMaterialCopies
	fieldMode
	fieldLighting
	fieldAngle
)

// fieldSample é o campo repetido do lote.
const fieldSample protowire.Number = 1

func encodeSample(e *protowire.Encoder, s Sample) {
	e.Uvarint(fieldFrame, s.Frame)
	e.Uvarint(fieldSlot, uint64(s.Slot))
	e.Uvarint(fieldFence, s.Fence)
	e.Varint(fieldFenceWait, int64(s.FenceWait/time.Microsecond))
	e.Uvarint(fieldDraws, uint64(s.Draws))
	e.Uvarint(fieldObjectCopies, uint64(s.ObjectCopies))
	e.Uvarint(fieldMaterialCopies, uint64(s.MaterialCopies))
	e.String(fieldMode, s.Mode)
	e.Bool(fieldLighting, s.Lighting)
	e.Float32(fieldAngle, s.Angle)
}

func decodeSample(data []byte) (Sample, error) {
	var s Sample
	d := protowire.NewDecoder(data)
	for !d.Done() {
		num, typ, err := d.Next()
		if err != nil {
			return s, err
		}
		var u uint64
		switch num {
		case fieldFrame:
			s.Frame, err = d.Uvarint()
		case fieldSlot:
			u, err = d.Uvarint()
			s.Slot = int(u)
		case fieldFence:
			s.Fence, err = d.Uvarint()
		case fieldFenceWait:
			var us int64
			us, err = d.Varint()
			s.FenceWait = time.Duration(us) * time.Microsecond
		case fieldDraws:
			u, err = d.Uvarint()
			s.Draws = int(u)
		case fieldObjectCopies:
			u, err = d.Uvarint()
			s.ObjectCopies = int(u)
		case fieldMaterialCopies:
			u, err = d.Uvarint()
			s.MaterialCopies = int(u)
		case fieldMode:
			s.Mode, err = d.String()
		case fieldLighting:
			s.Lighting, err = d.Bool()
		case fieldAngle:
			s.Angle, err = d.Float32()
		default:
			err = d.Skip(num, typ)
		}
		if err != nil {
			return s, fmt.Errorf("campo %d: %w", num, err)
		}
	}
	return s, nil
}

// codec serializa lotes de amostras: mensagem protobuf com Sample repetido, comprimida com zstd.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
	buf *protowire.Encoder
	one *protowire.Encoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &codec{enc: enc, dec: dec, buf: protowire.NewEncoder(), one: protowire.NewEncoder()}, nil
}

// Encode devolve o blob comprimido do lote.
func (c *codec) Encode(samples []Sample) []byte {
	c.buf.Reset()
	for _, s := range samples {
		c.one.Reset()
		encodeSample(c.one, s)
		c.buf.Message(fieldSample, c.one.Bytes())
	}
	return c.enc.EncodeAll(c.buf.Bytes(), nil)
}

// Decode é o inverso de Encode.
func (c *codec) Decode(blob []byte) ([]Sample, error) {
	raw, err := c.dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	var out []Sample
	d := protowire.NewDecoder(raw)
	for !d.Done() {
		num, typ, err := d.Next()
		if err != nil {
			return out, err
		}
		if num != fieldSample || typ != protowire.BytesType {
			if err := d.Skip(num, typ); err != nil {
				return out, err
			}
			continue
		}
		msg, err := d.Bytes()
		if err != nil {
			return out, err
		}
		s, err := decodeSample(msg)
		if err != nil {
			return out, fmt.Errorf("amostra %d: %w", len(out), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (c *codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
