// Package protowire é um encoder/decoder de campos no wire format protobuf, sem .proto gerado.
// Os registros do journal de frames são serializados com ele.
package protowire

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Number é o número de um campo.
type Number = protowire.Number

// Type é o wire type de um campo.
type Type = protowire.Type

// Wire types usados.
const (
	VarintType  = protowire.VarintType
	Fixed32Type = protowire.Fixed32Type
	Fixed64Type = protowire.Fixed64Type
	BytesType   = protowire.BytesType
)

// ---------- ENCODER ----------

// Encoder acumula campos num buffer. Valores zero não são escritos (semântica proto3).
type Encoder struct {
	buf []byte
}

// NewEncoder cria um encoder vazio.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 128)}
}

// Bytes retorna o buffer serializado.
func (e *Encoder) Bytes() []byte { return e.buf }

// Reset limpa o buffer mantendo a capacidade.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Uvarint codifica um inteiro sem sinal.
func (e *Encoder) Uvarint(num Number, v uint64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, VarintType)
	e.buf = protowire.AppendVarint(e.buf, v)
}

// Varint codifica um inteiro com sinal em zigzag (sint64).
func (e *Encoder) Varint(num Number, v int64) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, VarintType)
	e.buf = protowire.AppendVarint(e.buf, protowire.EncodeZigZag(v))
}

func (e *Encoder) Bool(num Number, v bool) {
	if !v {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, VarintType)
	e.buf = protowire.AppendVarint(e.buf, 1)
}

// Float32 codifica um float como fixed32.
func (e *Encoder) Float32(num Number, v float32) {
	if v == 0 {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, Fixed32Type)
	e.buf = protowire.AppendFixed32(e.buf, math.Float32bits(v))
}

func (e *Encoder) String(num Number, v string) {
	if v == "" {
		return
	}
	e.buf = protowire.AppendTag(e.buf, num, BytesType)
	e.buf = protowire.AppendString(e.buf, v)
}

// Message codifica uma submensagem já serializada. Submensagens vazias são escritas,
// para que um registro sem campos não desapareça de uma lista repetida.
func (e *Encoder) Message(num Number, sub []byte) {
	e.buf = protowire.AppendTag(e.buf, num, BytesType)
	e.buf = protowire.AppendBytes(e.buf, sub)
}

// ---------- DECODER ----------

// Decoder percorre os campos de um buffer.
type Decoder struct {
	buf []byte
}

// NewDecoder cria um decoder sobre buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Done retorna true se não há mais bytes.
func (d *Decoder) Done() bool { return len(d.buf) == 0 }

// consumed converte o retorno negativo de protowire em erro.
func consumed(what string, n int) error {
	if n < 0 {
		return fmt.Errorf("protowire: %s: %w", what, protowire.ParseError(n))
	}
	return nil
}

// Next lê a tag do próximo campo.
func (d *Decoder) Next() (Number, Type, error) {
	num, typ, n := protowire.ConsumeTag(d.buf)
	if err := consumed("tag", n); err != nil {
		return 0, 0, err
	}
	d.buf = d.buf[n:]
	return num, typ, nil
}

func (d *Decoder) Uvarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(d.buf)
	if err := consumed("varint", n); err != nil {
		return 0, err
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *Decoder) Varint() (int64, error) {
	v, err := d.Uvarint()
	return protowire.DecodeZigZag(v), err
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uvarint()
	return v != 0, err
}

func (d *Decoder) Float32() (float32, error) {
	v, n := protowire.ConsumeFixed32(d.buf)
	if err := consumed("fixed32", n); err != nil {
		return 0, err
	}
	d.buf = d.buf[n:]
	return math.Float32frombits(v), nil
}

// Bytes lê um campo length-delimited. O slice aponta para o buffer original.
func (d *Decoder) Bytes() ([]byte, error) {
	v, n := protowire.ConsumeBytes(d.buf)
	if err := consumed("bytes", n); err != nil {
		return nil, err
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	return string(b), err
}

// Skip pula o valor de um campo desconhecido.
func (d *Decoder) Skip(num Number, typ Type) error {
	n := protowire.ConsumeFieldValue(num, typ, d.buf)
	if err := consumed(fmt.Sprintf("campo %d", num), n); err != nil {
		return err
	}
	d.buf = d.buf[n:]
	return nil
}
