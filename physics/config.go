package physics

import (
	"fmt"
	"os"

	"github.com/gazed/fiz/math/lin"
	"gopkg.in/yaml.v3"
)

// SceneConfig is a declarative description of a starting World: gravity,
// solver substep count, and the bodies to populate it with. It lets a
// host application describe a scene in YAML instead of hand-building
// BodyDef values in Go.
type SceneConfig struct {
	Gravity ConfigVec3      `yaml:"gravity"`
	Iters   int             `yaml:"iters"`
	Bodies  []ConfigBodyDef `yaml:"bodies"`
}

// ConfigVec3 is the YAML-friendly mirror of lin.V3.
type ConfigVec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v ConfigVec3) toV3() lin.V3 { return lin.V3{X: v.X, Y: v.Y, Z: v.Z} }

// ConfigShape describes one of the four shape kinds a scene file can name
// (polyhedra are not loadable from YAML). Only the fields relevant to Kind
// need be set; the rest are ignored.
type ConfigShape struct {
	Kind     string     `yaml:"kind"` // sphere, box, cylinder, capsule
	Radius   float64    `yaml:"radius"`
	HalfSize ConfigVec3 `yaml:"half_size"`
	Height   float64    `yaml:"height"`
}

func (s ConfigShape) toShape() (Shape, error) {
	switch s.Kind {
	case "sphere":
		return &Sphere{Radius: s.Radius}, nil
	case "box":
		return &Box{Half: s.HalfSize.toV3()}, nil
	case "cylinder":
		return &Cylinder{Radius: s.Radius, HalfHeight: s.Height / 2}, nil
	case "capsule":
		return &Capsule{Radius: s.Radius, HalfHeight: s.Height / 2}, nil
	default:
		return nil, fmt.Errorf("physics: unknown scene shape kind %q", s.Kind)
	}
}

// ConfigBodyDef is the YAML-friendly mirror of BodyDef.
type ConfigBodyDef struct {
	Kind           string      `yaml:"kind"` // static, dynamic
	Pos            ConfigVec3  `yaml:"pos"`
	Vel            ConfigVec3  `yaml:"vel"`
	LinearDamping  float64     `yaml:"linear_damping"`
	AngularDamping float64     `yaml:"angular_damping"`
	Density        float64     `yaml:"density"`
	Friction       float64     `yaml:"friction"`
	Restitution    float64     `yaml:"restitution"`
	RotationLocked bool        `yaml:"rotation_locked"`
	IsSensor       bool        `yaml:"is_sensor"`
	Shape          ConfigShape `yaml:"shape"`
}

func (c ConfigBodyDef) toBodyDef() (BodyDef, error) {
	def := NewBodyDef()
	if c.Kind == "static" {
		def.Kind = Static
	} else {
		def.Kind = Dynamic
	}
	def.Pos = c.Pos.toV3()
	def.Vel = c.Vel.toV3()
	def.RotationLocked = c.RotationLocked
	def.IsSensor = c.IsSensor

	if c.LinearDamping != 0 {
		def.LinearDamping = c.LinearDamping
	}
	if c.AngularDamping != 0 {
		def.AngularDamping = c.AngularDamping
	}
	if c.Density != 0 {
		def.Density = c.Density
	}
	if c.Friction != 0 {
		def.Friction = c.Friction
	}
	if c.Restitution != 0 {
		def.Restitution = c.Restitution
	}

	shape, err := c.Shape.toShape()
	if err != nil {
		return BodyDef{}, err
	}
	def.Shape = shape
	return def, nil
}

// LoadSceneConfig reads a YAML scene description from path and populates
// a fresh World with its bodies. The returned World has already had
// every body created via CreateBody; the caller still owns calling Step.
func LoadSceneConfig(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("physics: reading scene config: %w", err)
	}

	var cfg SceneConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("physics: parsing scene config: %w", err)
	}

	w := NewWorld()
	if cfg.Iters > 0 {
		w.Iters = cfg.Iters
	}
	w.Gravity = cfg.Gravity.toV3()

	for i, cb := range cfg.Bodies {
		def, err := cb.toBodyDef()
		if err != nil {
			return nil, fmt.Errorf("physics: body %d: %w", i, err)
		}
		if _, err := w.CreateBody(def); err != nil {
			return nil, fmt.Errorf("physics: body %d: %w", i, err)
		}
	}
	return w, nil
}
