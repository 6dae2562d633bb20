package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"roomsync/internal/domain"
)

// Имена кодеков для параметра ?codec= в URL веб-сокета.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec переводит конверт в кадр веб-сокета и обратно.
type Codec interface {
	Name() string
	// Binary - кадры отправляются как BinaryMessage, иначе TextMessage.
	Binary() bool
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Inbound, error)
}

// CodecByName возвращает кодек по имени. Пустое имя - JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", CodecJSON:
		return JSONCodec{}, nil
	case CodecMsgpack:
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// Inbound - входящее сообщение с еще не разобранным payload.
type Inbound struct {
	Event string

	raw    []byte
	codec  string
	decode func([]byte, any) error
}

// NewInbound собирает входящее сообщение из уже разобранного payload (тесты, боты).
func NewInbound(event string, payload any) Inbound {
	raw, _ := json.Marshal(payload)
	if payload == nil {
		raw = nil
	}
	return Inbound{Event: event, raw: raw, codec: CodecJSON, decode: json.Unmarshal}
}

// Codec - имя кодека, которым пришло сообщение.
func (in Inbound) Codec() string { return in.codec }

// Payload - сырой payload в формате кодека (для журнала запросов).
func (in Inbound) Payload() []byte { return in.raw }

// HasPayload - в конверте есть непустой payload.
func (in Inbound) HasPayload() bool {
	return len(in.raw) > 0 && !bytes.Equal(in.raw, []byte("null")) && !(len(in.raw) == 1 && in.raw[0] == 0xc0)
}

// Bind разбирает payload в v.
func (in Inbound) Bind(v any) error {
	if !in.HasPayload() {
		return fmt.Errorf("%w: %s: payload is required", domain.ErrProtocol, in.Event)
	}
	if err := in.decode(in.raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrProtocol, in.Event, err)
	}
	return nil
}

// --- JSON ---

// JSONCodec кодек по умолчанию, текстовые кадры.
type JSONCodec struct{}

type jsonInbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (JSONCodec) Name() string { return CodecJSON }
func (JSONCodec) Binary() bool { return false }

func (JSONCodec) Encode(msg Message) ([]byte, error) {
	return json.Marshal(Envelope{Event: msg.Event, Payload: msg.Payload})
}

func (JSONCodec) Decode(data []byte) (Inbound, error) {
	var env jsonInbound
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
	}
	if env.Event == "" {
		return Inbound{}, fmt.Errorf("%w: missing event", domain.ErrProtocol)
	}
	return Inbound{Event: env.Event, raw: env.Payload, codec: CodecJSON, decode: json.Unmarshal}, nil
}

// --- MessagePack ---

// MsgpackCodec бинарный кодек. Поля структур берутся из тегов json,
// поэтому оба кодека дают одинаковую схему.
type MsgpackCodec struct{}

type msgpackInbound struct {
	Event   string             `msgpack:"event"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

func (MsgpackCodec) Name() string { return CodecMsgpack }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Encode(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Envelope{Event: msg.Event, Payload: msg.Payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Decode(data []byte) (Inbound, error) {
	var env msgpackInbound
	if err := msgpackUnmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
	}
	if env.Event == "" {
		return Inbound{}, fmt.Errorf("%w: missing event", domain.ErrProtocol)
	}
	return Inbound{Event: env.Event, raw: env.Payload, codec: CodecMsgpack, decode: msgpackUnmarshal}, nil
}

func msgpackUnmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
