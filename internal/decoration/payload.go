package decoration

// LineStyle is the payload of line descriptors. PaddingLeft and TextIndent
// are in character widths.
type LineStyle struct {
	Class       string `json:"class"`
	PaddingLeft int    `json:"paddingLeft,omitempty"`
	TextIndent  int    `json:"textIndent,omitempty"`
}

// MarkStyle is the payload of mark descriptors.
type MarkStyle struct {
	Class string `json:"class"`
}

// Hidden replaces markup with nothing.
type Hidden struct {
	Node string `json:"node"`
}

// HeadingNumber replaces a heading's marker with its running number.
type HeadingNumber struct {
	Level  int    `json:"level"`
	Number string `json:"number"`
}

// ListMarker replaces a list item's raw marker.
type ListMarker struct {
	Ordered bool   `json:"ordered"`
	Depth   int    `json:"depth"`
	Text    string `json:"text"`
}

// Checkbox replaces a task marker. Pos is the offset of the marker's '['.
type Checkbox struct {
	Checked  bool `json:"checked"`
	Pos      int  `json:"pos"`
	ReadOnly bool `json:"readOnly,omitempty"`
}

// Image replaces an image node.
type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Cached bool   `json:"cached"`
}

// Link replaces the tail of a link, "](url)", with a rendered button.
type Link struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Button any    `json:"button,omitempty"`
}

// Rule replaces a thematic break.
type Rule struct{}

// AnnotationMark styles an annotated span.
type AnnotationMark struct {
	ID      string `json:"id"`
	Tooltip any    `json:"tooltip,omitempty"`
}
