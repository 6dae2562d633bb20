package domain

import (
	"encoding/json"
	"fmt"
)

// EntityPatch - частичное состояние сущности. Заданы только пришедшие поля.
//
// Используется в запросе спавна (args), в ответе на тик и при слиянии
// на стороне сервера.
type EntityPatch struct {
	UniqueID            *string
	Type                *string
	OwnerID             *string
	Enabled             *bool
	Position            *Vec3
	Rotation            *Euler
	DestroyOnOwnerLeave *bool
	Fields              map[string]any
}

// PatchFromState строит полный патч из состояния.
func PatchFromState(e EntityState) EntityPatch {
	c := e.Clone()
	return EntityPatch{
		UniqueID:            &c.UniqueID,
		Type:                &c.Type,
		OwnerID:             &c.OwnerID,
		Enabled:             &c.Enabled,
		Position:            &c.Position,
		Rotation:            &c.Rotation,
		DestroyOnOwnerLeave: &c.DestroyOnOwnerLeave,
		Fields:              c.Fields,
	}
}

// WithoutIdentity убирает поля, которые нельзя менять через ответ на тик:
// идентификатор, тип, владельца и политику удаления.
func (p EntityPatch) WithoutIdentity() EntityPatch {
	p.UniqueID = nil
	p.Type = nil
	p.OwnerID = nil
	p.DestroyOnOwnerLeave = nil
	return p
}

// IsEmpty - в патче нет ни одного поля.
func (p EntityPatch) IsEmpty() bool {
	return p.UniqueID == nil && p.Type == nil && p.OwnerID == nil &&
		p.Enabled == nil && p.Position == nil && p.Rotation == nil &&
		p.DestroyOnOwnerLeave == nil && len(p.Fields) == 0
}

// ToMap собирает плоское представление для кодеков.
func (p EntityPatch) ToMap() map[string]any {
	out := make(map[string]any, len(p.Fields)+len(reservedKeys))
	for k, v := range p.Fields {
		out[k] = v
	}
	if p.UniqueID != nil {
		out[KeyUniqueID] = *p.UniqueID
	}
	if p.Type != nil {
		out[KeyType] = *p.Type
	}
	if p.OwnerID != nil {
		out[KeyOwnerID] = *p.OwnerID
	}
	if p.Enabled != nil {
		out[KeyEnabled] = *p.Enabled
	}
	if p.Position != nil {
		out[KeyPosition] = *p.Position
	}
	if p.Rotation != nil {
		out[KeyRotation] = *p.Rotation
	}
	if p.DestroyOnOwnerLeave != nil {
		out[KeyDestroyOnOwnerLeave] = *p.DestroyOnOwnerLeave
	}
	return out
}

func (p EntityPatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

func (p *EntityPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: entity: %v", ErrProtocol, err)
	}
	out, err := decodePatch(raw, func(r json.RawMessage, v any) error {
		return json.Unmarshal(r, v)
	})
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// FromMap разбирает плоский объект, уже декодированный в map (msgpack, тесты).
func FromMap(raw map[string]any) (EntityPatch, error) {
	return decodePatch(raw, assign)
}

// decodePatch раскладывает плоский объект по типизированным полям.
// unmarshal отвечает за конкретное представление сырого значения.
func decodePatch[R any](raw map[string]R, unmarshal func(R, any) error) (EntityPatch, error) {
	var p EntityPatch
	for key, r := range raw {
		var err error
		switch key {
		case KeyUniqueID:
			p.UniqueID = new(string)
			err = unmarshal(r, p.UniqueID)
		case KeyType:
			p.Type = new(string)
			err = unmarshal(r, p.Type)
		case KeyOwnerID:
			p.OwnerID = new(string)
			err = unmarshal(r, p.OwnerID)
		case KeyEnabled:
			p.Enabled = new(bool)
			err = unmarshal(r, p.Enabled)
		case KeyPosition:
			p.Position = new(Vec3)
			err = unmarshal(r, p.Position)
		case KeyRotation:
			p.Rotation = new(Euler)
			err = unmarshal(r, p.Rotation)
		case KeyDestroyOnOwnerLeave:
			p.DestroyOnOwnerLeave = new(bool)
			err = unmarshal(r, p.DestroyOnOwnerLeave)
		default:
			var v any
			err = unmarshal(r, &v)
			if err == nil {
				if p.Fields == nil {
					p.Fields = make(map[string]any)
				}
				p.Fields[key] = v
			}
		}
		if err != nil {
			return EntityPatch{}, fmt.Errorf("%w: field %q: %v", ErrProtocol, key, err)
		}
	}
	return p, nil
}

// assign кладет уже декодированное значение в типизированное поле.
func assign(src any, dst any) error {
	switch d := dst.(type) {
	case *string:
		s, ok := src.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", src)
		}
		*d = s
	case *bool:
		b, ok := src.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", src)
		}
		*d = b
	case *Vec3:
		x, y, z, err := triple(src)
		if err != nil {
			return err
		}
		*d = Vec3{X: x, Y: y, Z: z}
	case *Euler:
		x, y, z, err := triple(src)
		if err != nil {
			return err
		}
		*d = Euler{X: x, Y: y, Z: z}
	case *any:
		*d = normalize(src)
	default:
		return fmt.Errorf("unsupported target %T", dst)
	}
	return nil
}

func triple(src any) (x, y, z float64, err error) {
	switch v := normalize(src).(type) {
	case Vec3:
		return v.X, v.Y, v.Z, nil
	case Euler:
		return v.X, v.Y, v.Z, nil
	case map[string]any:
		var ok bool
		// отсутствующая ось трактуется как ноль
		if _, has := v["x"]; has {
			if x, ok = toFloat(v["x"]); !ok {
				return 0, 0, 0, fmt.Errorf("x is not a number")
			}
		}
		if _, has := v["y"]; has {
			if y, ok = toFloat(v["y"]); !ok {
				return 0, 0, 0, fmt.Errorf("y is not a number")
			}
		}
		if _, has := v["z"]; has {
			if z, ok = toFloat(v["z"]); !ok {
				return 0, 0, 0, fmt.Errorf("z is not a number")
			}
		}
		return x, y, z, nil
	}
	return 0, 0, 0, fmt.Errorf("expected vector object, got %T", src)
}

// normalize приводит вложенные map[any]any (так msgpack декодирует
// карты с нестроковыми ключами) к map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}
