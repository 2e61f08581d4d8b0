package widget

import (
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/dshills/marginalia/internal/plugin/lua"
)

// Props are the values handed to a renderer: the element's attributes,
// its raw children under "children", and any buffered widget state.
type Props map[string]any

// FactoryFunc renders a widget synchronously.
type FactoryFunc func(Props) (any, error)

// Definition maps a tag to a renderer. Exactly one of Factory or Component
// must be set.
type Definition struct {
	Tag string

	// Factory builds the rendered unit directly.
	Factory FactoryFunc

	// Component names a component mounted by the host's render framework.
	Component string

	// Block renders the widget as a block rather than inline.
	Block bool

	// When is an optional expr predicate over tag, attrs and children.
	// The definition applies only where it evaluates true.
	When string
}

type entry struct {
	def  Definition
	when *exprvm.Program
}

// Registry holds render definitions keyed by tag name. Tags without a
// definition render nothing.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*entry)}
}

// Register adds a definition, compiling its When predicate.
func (r *Registry) Register(def Definition) error {
	if def.Tag == "" || (def.Factory == nil) == (def.Component == "") {
		return fmt.Errorf("%w: tag %q", ErrInvalidDefinition, def.Tag)
	}
	e := &entry{def: def}
	if def.When != "" {
		program, err := exprlang.Compile(def.When,
			exprlang.Env(predicateEnv(&Element{})),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
		)
		if err != nil {
			return fmt.Errorf("%w: tag %q: when: %v", ErrInvalidDefinition, def.Tag, err)
		}
		e.when = program
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[def.Tag]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTag, def.Tag)
	}
	r.defs[def.Tag] = e
	return nil
}

// RegisterLua adds a definition whose factory calls fn in a Lua state with
// the props table and uses the first result.
func (r *Registry) RegisterLua(tag string, state *lua.State, fn string, block bool, when string) error {
	if state == nil || !state.HasFunction(fn) {
		return fmt.Errorf("%w: tag %q: lua function %q", ErrInvalidDefinition, tag, fn)
	}
	return r.Register(Definition{
		Tag:   tag,
		Block: block,
		When:  when,
		Factory: func(p Props) (any, error) {
			out, err := state.Call(fn, map[string]any(p))
			if err != nil {
				return nil, err
			}
			if len(out) == 0 {
				return nil, nil
			}
			return out[0], nil
		},
	})
}

// Tags returns the number of registered tags.
func (r *Registry) Tags() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Lookup returns the definition that applies to el. A failing predicate
// counts as no match.
func (r *Registry) Lookup(el *Element) (Definition, bool, error) {
	r.mu.RLock()
	e, ok := r.defs[el.Tag]
	r.mu.RUnlock()
	if !ok {
		return Definition{}, false, nil
	}
	if e.when == nil {
		return e.def, true, nil
	}
	out, err := exprlang.Run(e.when, predicateEnv(el))
	if err != nil {
		return Definition{}, false, fmt.Errorf("tag %s: when: %w", el.Tag, err)
	}
	match, _ := out.(bool)
	return e.def, match, nil
}

func predicateEnv(el *Element) map[string]any {
	attrs := el.Attrs
	if attrs == nil {
		attrs = map[string]any{}
	}
	return map[string]any{
		"tag":      el.Tag,
		"attrs":    attrs,
		"children": el.Children,
	}
}

// render calls a factory, converting panics to errors.
func render(def Definition, props Props) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("widget %s panicked: %v", def.Tag, p)
		}
	}()
	return def.Factory(props)
}
