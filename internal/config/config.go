package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/marginalia/internal/logging"
)

// Config is the complete engine configuration.
type Config struct {
	Decoration DecorationConfig `toml:"decoration" yaml:"decoration"`
	Annotation AnnotationConfig `toml:"annotation" yaml:"annotation"`
	Widgets    WidgetsConfig    `toml:"widgets" yaml:"widgets"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

// DecorationConfig configures the decoration builder.
type DecorationConfig struct {
	Numbering      bool     `toml:"numbering" yaml:"numbering"`
	HeadingStart   int      `toml:"heading_start" yaml:"heading_start"`
	BulletIndent   int      `toml:"bullet_indent" yaml:"bullet_indent"`
	OrderedIndent  int      `toml:"ordered_indent" yaml:"ordered_indent"`
	SelectionDelay Duration `toml:"selection_delay" yaml:"selection_delay"`
}

// AnnotationConfig configures the annotation store.
type AnnotationConfig struct {
	ProximityDelay Duration `toml:"proximity_delay" yaml:"proximity_delay"`
}

// WidgetsConfig configures the widget registry and navigation.
type WidgetsConfig struct {
	NavigationTags []string           `toml:"navigation_tags" yaml:"navigation_tags"`
	ScriptTimeout  Duration           `toml:"script_timeout" yaml:"script_timeout"`
	Definitions    []WidgetDefinition `toml:"definitions" yaml:"definitions"`
}

// Widget definition kinds.
const (
	KindComponent = "component"
	KindLua       = "lua"
)

// WidgetDefinition declares a render definition for one tag. Component
// definitions name a host component; Lua definitions name a script file
// and the function in it that renders the widget.
type WidgetDefinition struct {
	Tag       string `toml:"tag" yaml:"tag"`
	Kind      string `toml:"kind" yaml:"kind"`
	Component string `toml:"component,omitempty" yaml:"component,omitempty"`
	Script    string `toml:"script,omitempty" yaml:"script,omitempty"`
	Function  string `toml:"function,omitempty" yaml:"function,omitempty"`
	Block     bool   `toml:"block,omitempty" yaml:"block,omitempty"`
	When      string `toml:"when,omitempty" yaml:"when,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Decoration: DecorationConfig{
			HeadingStart:  1,
			BulletIndent:  2,
			OrderedIndent: 3,
		},
		Annotation: AnnotationConfig{
			ProximityDelay: Duration{300 * time.Millisecond},
		},
		Widgets: WidgetsConfig{
			ScriptTimeout: Duration{time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks every value and returns the first problem found.
func (c Config) Validate() error {
	d := c.Decoration
	if d.HeadingStart < 1 || d.HeadingStart > 6 {
		return invalid("decoration.heading_start", "%d not in 1..6", d.HeadingStart)
	}
	if d.BulletIndent <= 0 {
		return invalid("decoration.bullet_indent", "must be positive")
	}
	if d.OrderedIndent <= 0 {
		return invalid("decoration.ordered_indent", "must be positive")
	}
	if d.SelectionDelay.Duration < 0 {
		return invalid("decoration.selection_delay", "must not be negative")
	}
	if c.Annotation.ProximityDelay.Duration < 0 {
		return invalid("annotation.proximity_delay", "must not be negative")
	}
	if c.Widgets.ScriptTimeout.Duration < 0 {
		return invalid("widgets.script_timeout", "must not be negative")
	}

	seen := make(map[string]bool, len(c.Widgets.Definitions))
	for i, def := range c.Widgets.Definitions {
		field := fmt.Sprintf("widgets.definitions[%d]", i)
		if def.Tag == "" {
			return invalid(field, "tag is required")
		}
		if seen[def.Tag] {
			return invalid(field, "duplicate tag %q", def.Tag)
		}
		seen[def.Tag] = true
		switch def.Kind {
		case KindComponent:
			if def.Component == "" {
				return invalid(field, "component is required for kind %q", def.Kind)
			}
		case KindLua:
			if def.Script == "" {
				return invalid(field, "script is required for kind %q", def.Kind)
			}
		default:
			return invalid(field, "unknown kind %q", def.Kind)
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return invalid("log.format", "%v", err)
	}
	return nil
}

// LuaFunction returns the render function name, "render" by default.
func (d WidgetDefinition) LuaFunction() string {
	if d.Function == "" {
		return "render"
	}
	return d.Function
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML parses a duration scalar.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
