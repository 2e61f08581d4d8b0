package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/plugin/lua"
	"github.com/dshills/marginalia/internal/widget"
)

// loadDefinitions registers configured widget definitions. Lua scripts are
// loaded once per file; the returned states must be closed by the caller.
func loadDefinitions(reg *widget.Registry, defs []config.WidgetDefinition, timeout time.Duration, logger *slog.Logger) ([]*lua.State, error) {
	states := make(map[string]*lua.State)
	var out []*lua.State
	fail := func(err error) ([]*lua.State, error) {
		for _, s := range out {
			s.Close()
		}
		return nil, err
	}

	for _, def := range defs {
		switch def.Kind {
		case config.KindComponent:
			err := reg.Register(widget.Definition{
				Tag:       def.Tag,
				Component: def.Component,
				Block:     def.Block,
				When:      def.When,
			})
			if err != nil {
				return fail(err)
			}
		case config.KindLua:
			state, ok := states[def.Script]
			if !ok {
				code, err := os.ReadFile(def.Script)
				if err != nil {
					return fail(fmt.Errorf("loading widget script: %w", err))
				}
				state = lua.NewState(lua.WithTimeout(timeout), lua.WithLogger(logger))
				out = append(out, state)
				if err := state.DoString(string(code)); err != nil {
					return fail(fmt.Errorf("running widget script %s: %w", def.Script, err))
				}
				states[def.Script] = state
			}
			if err := reg.RegisterLua(def.Tag, state, def.LuaFunction(), def.Block, def.When); err != nil {
				return fail(err)
			}
		default:
			return fail(fmt.Errorf("%w: widget kind %q", config.ErrInvalidConfig, def.Kind))
		}
	}
	return out, nil
}
