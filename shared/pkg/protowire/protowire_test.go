package protowire

import (
	"errors"
	"testing"
)

func TestFieldsRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.Uvarint(1, 300)
	e.Varint(2, -7)
	e.Bool(3, true)
	e.Float32(4, 1.5)
	e.String(5, "wireframe")
	e.Uvarint(6, 0) // omitido

	d := NewDecoder(e.Bytes())
	seen := map[Number]bool{}
	for !d.Done() {
		num, typ, err := d.Next()
		if err != nil {
			t.Fatal(err)
		}
		seen[num] = true
		switch num {
		case 1:
			if v, _ := d.Uvarint(); v != 300 {
				t.Errorf("campo 1 = %d", v)
			}
		case 2:
			if v, _ := d.Varint(); v != -7 {
				t.Errorf("campo 2 = %d", v)
			}
		case 3:
			if v, _ := d.Bool(); !v {
				t.Error("campo 3 falso")
			}
		case 4:
			if v, _ := d.Float32(); v != 1.5 {
				t.Errorf("campo 4 = %v", v)
			}
		case 5:
			if v, _ := d.String(); v != "wireframe" {
				t.Errorf("campo 5 = %q", v)
			}
		default:
			if err := d.Skip(num, typ); err != nil {
				t.Fatal(err)
			}
		}
	}
	if seen[6] || len(seen) != 5 {
		t.Errorf("campos lidos: %v", seen)
	}
}

func TestEmptyMessageIsKept(t *testing.T) {
	e := NewEncoder()
	e.Message(1, nil)
	e.Message(1, nil)

	d := NewDecoder(e.Bytes())
	n := 0
	for !d.Done() {
		if _, _, err := d.Next(); err != nil {
			t.Fatal(err)
		}
		if _, err := d.Bytes(); err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 2 {
		t.Errorf("%d mensagens, want 2", n)
	}
}

func TestTruncated(t *testing.T) {
	e := NewEncoder()
	e.String(1, "abcdef")
	buf := e.Bytes()

	d := NewDecoder(buf[:len(buf)-2])
	if _, _, err := d.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Bytes(); err == nil {
		t.Error("bytes truncados aceitos")
	}

	if _, _, err := NewDecoder([]byte{0x80}).Next(); err == nil {
		t.Error("tag truncada aceita")
	} else if errors.Unwrap(err) == nil {
		t.Errorf("erro sem causa: %v", err)
	}
}
