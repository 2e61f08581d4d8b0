package tree

import "fmt"

// NodeType identifies the syntactic role of a node.
type NodeType uint16

// Node types understood by the decoration builder and widget registry.
const (
	Document NodeType = iota
	Paragraph
	ATXHeading1
	ATXHeading2
	ATXHeading3
	ATXHeading4
	ATXHeading5
	ATXHeading6
	HeaderMark
	BulletList
	OrderedList
	ListItem
	ListMark
	Task
	TaskMarker
	FencedCode
	CodeMark
	CodeInfo
	CodeText
	Blockquote
	QuoteMark
	HorizontalRule
	Emphasis
	StrongEmphasis
	Strikethrough
	EmphasisMark
	InlineCode
	Link
	Image
	LinkMark
	URL
	Element
)

var nodeTypeNames = [...]string{
	Document:       "Document",
	Paragraph:      "Paragraph",
	ATXHeading1:    "ATXHeading1",
	ATXHeading2:    "ATXHeading2",
	ATXHeading3:    "ATXHeading3",
	ATXHeading4:    "ATXHeading4",
	ATXHeading5:    "ATXHeading5",
	ATXHeading6:    "ATXHeading6",
	HeaderMark:     "HeaderMark",
	BulletList:     "BulletList",
	OrderedList:    "OrderedList",
	ListItem:       "ListItem",
	ListMark:       "ListMark",
	Task:           "Task",
	TaskMarker:     "TaskMarker",
	FencedCode:     "FencedCode",
	CodeMark:       "CodeMark",
	CodeInfo:       "CodeInfo",
	CodeText:       "CodeText",
	Blockquote:     "Blockquote",
	QuoteMark:      "QuoteMark",
	HorizontalRule: "HorizontalRule",
	Emphasis:       "Emphasis",
	StrongEmphasis: "StrongEmphasis",
	Strikethrough:  "Strikethrough",
	EmphasisMark:   "EmphasisMark",
	InlineCode:     "InlineCode",
	Link:           "Link",
	Image:          "Image",
	LinkMark:       "LinkMark",
	URL:            "URL",
	Element:        "Element",
}

// String returns the node type name.
func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", t)
}

// HeadingLevel returns 1..6 for ATX heading types and 0 otherwise.
func (t NodeType) HeadingLevel() int {
	if t >= ATXHeading1 && t <= ATXHeading6 {
		return int(t-ATXHeading1) + 1
	}
	return 0
}

// HeadingType returns the ATX heading type for a level in 1..6.
func HeadingType(level int) NodeType {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return ATXHeading1 + NodeType(level-1)
}

// IsList reports whether t is a list container.
func (t NodeType) IsList() bool {
	return t == BulletList || t == OrderedList
}
