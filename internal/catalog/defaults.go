package catalog

// Типы сущностей по умолчанию.
const (
	TypeEntity      = "entity"
	TypeProp        = "prop"
	TypePhysicsProp = "physicsProp"
	TypeCharacter   = "character"
	TypeFreecam     = "freecam"
)

func vec(x, y, z float64) map[string]any {
	return map[string]any{"x": x, "y": y, "z": z}
}

func physicsDefaults() map[string]any {
	return map[string]any{
		"propID":           "box",
		"static":           false,
		"boundsBlacklist":  []any{},
		"animationIndex":   0,
		"shapeType":        "box",
		"kinematic":        false,
		"ignoreRotation":   false,
		"ccd":              false,
		"gravityScale":     1.0,
		"mass":             0.0,
		"radius":           0.0,
		"halfHeight":       0.5,
		"restitution":      0.25,
		"linearDamping":    0.0,
		"angularDamping":   0.0,
		"offset":           vec(0, 0, 0),
		"velocity":         vec(0, 0, 0),
		"maxVelocity":      vec(30, 30, 30),
		"enabledRotations": vec(1, 1, 1),
	}
}

// Default - каталог с базовыми типами.
func Default() *Catalog {
	character := physicsDefaults()
	for k, v := range map[string]any{
		"ownerIsPlayer":    false,
		"acceleration":     20.0,
		"shapeType":        "capsule",
		"ignoreRotation":   true,
		"enabledRotations": vec(0, 0, 0),
		"linearDamping":    5.0,
		"radius":           0.3,
		"halfHeight":       1.25,
		"offset":           vec(0, -1.55, 0),
	} {
		character[k] = v
	}

	c, err := New(
		Definition{Type: TypeEntity},
		Definition{
			Type: TypeProp,
			Caps: CapRender,
			Defaults: map[string]any{
				"propID":          "box",
				"static":          false,
				"boundsBlacklist": []any{},
				"animationIndex":  0,
			},
		},
		Definition{Type: TypePhysicsProp, Caps: CapRender | CapPhysics, Defaults: physicsDefaults()},
		Definition{
			Type:       TypeCharacter,
			Caps:       CapRender | CapPhysics | CapInput,
			Controller: ControllerCharacter,
			Defaults:   character,
		},
		Definition{
			Type:       TypeFreecam,
			Caps:       CapInput,
			Controller: ControllerFreecam,
			Defaults:   map[string]any{"moveSpeed": 20.0},
		},
	)
	if err != nil {
		// встроенные определения проверены тестом
		panic(err)
	}
	return c
}
