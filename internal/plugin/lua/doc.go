// Package lua runs widget render scripts in a sandboxed gopher-lua state.
//
// A script defines global functions that take a props table and return
// the rendered unit as a Lua value:
//
//	function render(props)
//	  return { kind = "badge", text = string.upper(props.label) }
//	end
//
// Only the base, table, string and math libraries are opened; dofile,
// loadfile, load and loadstring are removed, and print is routed to the
// state's logger. Every call runs under a timeout enforced through the
// state's context.
package lua
