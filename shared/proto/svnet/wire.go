// Package svnet define as mensagens trocadas entre servidor e cliente via WebSocket,
// codificadas no formato wire do protobuf.
package svnet

import (
	"math"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// fieldFunc trata um campo; b começa no valor do campo e o retorno é quantos bytes foram consumidos.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk percorre todos os campos de b. Campos que fn não reconhece devem retornar n == 0
// e são pulados.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		used, err := fn(num, typ, b)
		if err != nil {
			return errors.Wrapf(err, "campo %d", num)
		}
		if used == 0 {
			used = protowire.ConsumeFieldValue(num, typ, b)
			if used < 0 {
				return protowire.ParseError(used)
			}
		}
		b = b[used:]
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 && !math.Signbit(v) {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendPackedDoubles(b []byte, num protowire.Number, vs []float64) []byte {
	if len(vs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(vs)*8))
	for _, v := range vs {
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	return b
}

func appendPackedUint32(b []byte, num protowire.Number, vs []uint32) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func consumeString(typ protowire.Type, b []byte) (string, int, error) {
	if typ != protowire.BytesType {
		return "", 0, errors.Errorf("tipo wire %d inesperado para string", typ)
	}
	s, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, protowire.ParseError(n)
	}
	return s, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errors.Errorf("tipo wire %d inesperado para bytes", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return append([]byte(nil), v...), n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errors.Errorf("tipo wire %d inesperado para varint", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeDouble(typ protowire.Type, b []byte) (float64, int, error) {
	if typ != protowire.Fixed64Type {
		return 0, 0, errors.Errorf("tipo wire %d inesperado para double", typ)
	}
	v, n := protowire.ConsumeFixed64(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return math.Float64frombits(v), n, nil
}

// consumePackedDoubles aceita a forma empacotada e também um valor avulso.
func consumePackedDoubles(dst []float64, typ protowire.Type, b []byte) ([]float64, int, error) {
	if typ == protowire.Fixed64Type {
		v, n, err := consumeDouble(typ, b)
		return append(dst, v), n, err
	}
	packed, n, err := consumeBytes(typ, b)
	if err != nil {
		return dst, 0, err
	}
	if len(packed)%8 != 0 {
		return dst, 0, errors.Errorf("lista de doubles com %d bytes", len(packed))
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeFixed64(packed)
		dst = append(dst, math.Float64frombits(v))
		packed = packed[m:]
	}
	return dst, n, nil
}

func consumePackedUint32(dst []uint32, typ protowire.Type, b []byte) ([]uint32, int, error) {
	if typ == protowire.VarintType {
		v, n, err := consumeVarint(typ, b)
		return append(dst, uint32(v)), n, err
	}
	packed, n, err := consumeBytes(typ, b)
	if err != nil {
		return dst, 0, err
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return dst, 0, protowire.ParseError(m)
		}
		dst = append(dst, uint32(v))
		packed = packed[m:]
	}
	return dst, n, nil
}
