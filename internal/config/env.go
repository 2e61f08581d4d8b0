package config

import (
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MARGINALIA_"

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(string) (string, bool)

type envBinding struct {
	name  string
	field string
	set   func(*Config, string) error
}

var envBindings = []envBinding{
	{"NUMBERING", "decoration.numbering", func(c *Config, v string) (err error) {
		c.Decoration.Numbering, err = strconv.ParseBool(v)
		return err
	}},
	{"HEADING_START", "decoration.heading_start", intSetter(func(c *Config) *int { return &c.Decoration.HeadingStart })},
	{"BULLET_INDENT", "decoration.bullet_indent", intSetter(func(c *Config) *int { return &c.Decoration.BulletIndent })},
	{"ORDERED_INDENT", "decoration.ordered_indent", intSetter(func(c *Config) *int { return &c.Decoration.OrderedIndent })},
	{"SELECTION_DELAY", "decoration.selection_delay", durationSetter(func(c *Config) *Duration { return &c.Decoration.SelectionDelay })},
	{"PROXIMITY_DELAY", "annotation.proximity_delay", durationSetter(func(c *Config) *Duration { return &c.Annotation.ProximityDelay })},
	{"SCRIPT_TIMEOUT", "widgets.script_timeout", durationSetter(func(c *Config) *Duration { return &c.Widgets.ScriptTimeout })},
	{"NAV_TAGS", "widgets.navigation_tags", func(c *Config, v string) error {
		c.Widgets.NavigationTags = splitList(v)
		return nil
	}},
	{"LOG_LEVEL", "log.level", func(c *Config, v string) error {
		c.Log.Level = v
		return nil
	}},
	{"LOG_FORMAT", "log.format", func(c *Config, v string) error {
		c.Log.Format = v
		return nil
	}},
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationSetter(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		field(c).Duration = d
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ApplyEnv overlays MARGINALIA_* variables found by lookup. Empty values
// are treated as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return invalid(b.field, "%s%s: %v", EnvPrefix, b.name, err)
		}
	}
	return nil
}
