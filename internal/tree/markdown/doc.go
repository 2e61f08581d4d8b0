// Package markdown is the reference syntax-tree provider for marginalia.
//
// It parses the markdown subset the decoration builder renders: ATX
// headings, bullet and ordered lists (nested by indentation), task items,
// fenced code, block quotes, thematic breaks, emphasis, strong emphasis,
// strikethrough, inline code, links, images, and custom elements written
// as capitalised tags (<Callout kind="note">...</Callout>, <Cite ref="x"/>).
//
// Every node offset refers to the original document; no text is copied or
// rewritten. Elements are recognised structurally only; their tag name and
// attributes are parsed later by the widget registry. An element whose
// closing tag is missing is left as plain text.
package markdown
