// Package catalog описывает типы сущностей: что сущность умеет
// (рендер, физика, ввод) и какие поля у нее по умолчанию.
package catalog

import (
	"fmt"
	"sort"

	"roomsync/internal/domain"
)

// Capabilities - набор возможностей типа.
type Capabilities uint8

const (
	CapRender Capabilities = 1 << iota
	CapPhysics
	CapInput
)

func (c Capabilities) Has(flag Capabilities) bool {
	return c&flag != 0
}

// Контроллеры ввода.
const (
	ControllerCharacter = "character"
	ControllerFreecam   = "freecam"
)

// Definition - запись каталога.
type Definition struct {
	Type       string
	Caps       Capabilities
	Controller string
	// Defaults - поля типа по умолчанию. Полученные поля имеют приоритет.
	Defaults map[string]any
}

// Catalog - неизменяемый реестр типов. Безопасен для чтения из любых горутин.
type Catalog struct {
	defs map[string]Definition
}

// New проверяет определения и собирает каталог.
// Ошибка здесь - ошибка конфигурации, процесс не стартует.
func New(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.Type == "" {
			return nil, fmt.Errorf("catalog: empty type tag")
		}
		if _, dup := c.defs[d.Type]; dup {
			return nil, fmt.Errorf("catalog: duplicate type %q", d.Type)
		}
		if d.Caps.Has(CapInput) {
			switch d.Controller {
			case ControllerCharacter, ControllerFreecam:
			default:
				return nil, fmt.Errorf("catalog: type %q takes input but has controller %q", d.Type, d.Controller)
			}
		}
		for key := range d.Defaults {
			if domain.IsReservedKey(key) {
				return nil, fmt.Errorf("catalog: type %q overrides reserved key %q", d.Type, key)
			}
		}
		c.defs[d.Type] = d
	}
	return c, nil
}

// Lookup возвращает определение типа или ErrUnknownType.
func (c *Catalog) Lookup(typeTag string) (Definition, error) {
	d, ok := c.defs[typeTag]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", domain.ErrUnknownType, typeTag)
	}
	return d, nil
}

func (c *Catalog) Has(typeTag string) bool {
	_, ok := c.defs[typeTag]
	return ok
}

// Types - отсортированный список зарегистрированных типов.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.defs))
	for t := range c.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Build собирает состояние реплики: умолчания типа, поверх них полученные поля.
func (c *Catalog) Build(received domain.EntityState) (domain.EntityState, Definition, error) {
	d, err := c.Lookup(received.Type)
	if err != nil {
		return domain.EntityState{}, Definition{}, err
	}
	out := received.Clone()
	for k, v := range d.Defaults {
		if _, ok := out.Fields[k]; !ok {
			out.SetField(k, cloneDefault(v))
		}
	}
	return out, d, nil
}

func cloneDefault(v any) any {
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = cloneDefault(val)
		}
		return out
	}
	return v
}
