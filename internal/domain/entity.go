package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Зарезервированные владельцы сущности.
const (
	// OwnerServer - сущность принадлежит серверу (окружение комнаты).
	OwnerServer = "server"
	// OwnerLocal - сущность существует только у клиента и никогда не уходит в сеть.
	OwnerLocal = "local"
)

// Ключи, которые сущность хранит в типизированных полях, а не в Fields.
const (
	KeyUniqueID            = "uniqueID"
	KeyType                = "id"
	KeyOwnerID             = "ownerID"
	KeyEnabled             = "enabled"
	KeyPosition            = "position"
	KeyRotation            = "rotation"
	KeyDestroyOnOwnerLeave = "destroyOnOwnerLeave"
)

var reservedKeys = map[string]bool{
	KeyUniqueID:            true,
	KeyType:                true,
	KeyOwnerID:             true,
	KeyEnabled:             true,
	KeyPosition:            true,
	KeyRotation:            true,
	KeyDestroyOnOwnerLeave: true,
}

// IsReservedKey сообщает, хранится ли ключ в типизированном поле EntityState.
func IsReservedKey(key string) bool {
	return reservedKeys[key]
}

// Vec3 - позиция в мировых координатах.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Euler - ориентация в радианах, порядок осей XYZ.
type Euler struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EntityState - реплицируемое состояние одной сущности.
//
// Сервер хранит его в таблице комнаты, клиент - внутри реплики.
// На проводе сущность плоская: типизированные поля и Fields лежат
// в одном объекте, как {"id":"character","uniqueID":"...","propID":"player"}.
type EntityState struct {
	UniqueID            string
	Type                string // ключ каталога сущностей
	OwnerID             string
	Enabled             bool
	Position            Vec3
	Rotation            Euler
	DestroyOnOwnerLeave bool

	// Fields - открытый набор полей конкретного типа (velocity, animationIndex, ...).
	// Владелец может расширять его свободно.
	Fields map[string]any
}

// NewEntityState создает состояние с умолчаниями базовой сущности.
func NewEntityState(uniqueID, typeTag, ownerID string) EntityState {
	return EntityState{
		UniqueID:            uniqueID,
		Type:                typeTag,
		OwnerID:             ownerID,
		Enabled:             true,
		DestroyOnOwnerLeave: true,
		Fields:              make(map[string]any),
	}
}

// IsNetworked - false для локальных сущностей клиента.
func (e *EntityState) IsNetworked() bool {
	return e.OwnerID != OwnerLocal
}

// Clone возвращает глубокую копию. Снимки комнаты собираются только из копий.
func (e EntityState) Clone() EntityState {
	out := e
	out.Fields = cloneFields(e.Fields)
	return out
}

// Apply переносит в состояние все заданные поля патча.
func (e *EntityState) Apply(p EntityPatch) {
	if p.UniqueID != nil {
		e.UniqueID = *p.UniqueID
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.OwnerID != nil {
		e.OwnerID = *p.OwnerID
	}
	if p.Enabled != nil {
		e.Enabled = *p.Enabled
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.DestroyOnOwnerLeave != nil {
		e.DestroyOnOwnerLeave = *p.DestroyOnOwnerLeave
	}
	if len(p.Fields) > 0 && e.Fields == nil {
		e.Fields = make(map[string]any, len(p.Fields))
	}
	for k, v := range p.Fields {
		e.Fields[k] = cloneValue(v)
	}
}

// Float читает числовое поле из Fields. Значения после JSON и msgpack
// приходят разными числовыми типами, поэтому приводим их здесь.
func (e *EntityState) Float(key string, fallback float64) float64 {
	if f, ok := toFloat(e.Fields[key]); ok {
		return f
	}
	return fallback
}

// Bool читает логическое поле из Fields.
func (e *EntityState) Bool(key string, fallback bool) bool {
	if b, ok := e.Fields[key].(bool); ok {
		return b
	}
	return fallback
}

// Text читает строковое поле из Fields.
func (e *EntityState) Text(key string, fallback string) string {
	if s, ok := e.Fields[key].(string); ok {
		return s
	}
	return fallback
}

// Vector читает поле вида {"x":..,"y":..,"z":..} из Fields.
func (e *EntityState) Vector(key string, fallback Vec3) Vec3 {
	switch v := e.Fields[key].(type) {
	case Vec3:
		return v
	case map[string]any:
		out := fallback
		if f, ok := toFloat(v["x"]); ok {
			out.X = f
		}
		if f, ok := toFloat(v["y"]); ok {
			out.Y = f
		}
		if f, ok := toFloat(v["z"]); ok {
			out.Z = f
		}
		return out
	}
	return fallback
}

// SetField записывает поле типа. Зарезервированные ключи сюда не попадают.
func (e *EntityState) SetField(key string, value any) {
	if IsReservedKey(key) {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
}

// ToMap собирает плоское представление для кодеков.
func (e EntityState) ToMap() map[string]any {
	out := make(map[string]any, len(e.Fields)+len(reservedKeys))
	for k, v := range e.Fields {
		out[k] = v
	}
	out[KeyUniqueID] = e.UniqueID
	out[KeyType] = e.Type
	out[KeyOwnerID] = e.OwnerID
	out[KeyEnabled] = e.Enabled
	out[KeyPosition] = e.Position
	out[KeyRotation] = e.Rotation
	out[KeyDestroyOnOwnerLeave] = e.DestroyOnOwnerLeave
	return out
}

func (e EntityState) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap())
}

func (e *EntityState) UnmarshalJSON(data []byte) error {
	var p EntityPatch
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*e = EntityState{Enabled: true, DestroyOnOwnerLeave: true, Fields: make(map[string]any)}
	e.Apply(p)
	return nil
}

func (e EntityState) String() string {
	return fmt.Sprintf("%s(%s owner=%s)", e.Type, e.UniqueID, e.OwnerID)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return math.NaN(), false
}

func cloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	}
	return v
}
