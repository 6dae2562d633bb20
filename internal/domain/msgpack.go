package domain

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Бинарный кодек использует то же плоское представление, что и JSON.
// Кодирование по значению: элементы map в снимке не адресуемы.

var (
	_ msgpack.CustomEncoder = (*EntityState)(nil)
	_ msgpack.CustomDecoder = (*EntityState)(nil)
	_ msgpack.CustomEncoder = (*EntityPatch)(nil)
	_ msgpack.CustomDecoder = (*EntityPatch)(nil)
)

func (e EntityState) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(e.ToMap())
}

func (e *EntityState) DecodeMsgpack(dec *msgpack.Decoder) error {
	var p EntityPatch
	if err := p.DecodeMsgpack(dec); err != nil {
		return err
	}
	*e = EntityState{Enabled: true, DestroyOnOwnerLeave: true, Fields: make(map[string]any)}
	e.Apply(p)
	return nil
}

func (p EntityPatch) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(p.ToMap())
}

func (p *EntityPatch) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: entity: %v", ErrProtocol, err)
	}
	out, err := FromMap(raw)
	if err != nil {
		return err
	}
	*p = out
	return nil
}
