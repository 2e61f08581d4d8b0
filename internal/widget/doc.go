// Package widget renders custom element tags embedded in a document.
//
// Element nodes from the syntax tree are parsed into a tag name, attributes
// and raw children, then looked up in a Registry of render definitions.
// Factory and Lua definitions render synchronously; Component definitions
// produce a mount placeholder and lifecycle events for an out-of-band
// render framework.
//
// The Builder rebuilds incrementally: when an edit lands strictly after the
// last processed element, only the appended region is parsed and the
// descriptors before it are handed back unchanged.
package widget
