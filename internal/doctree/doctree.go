package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Pages    int        // Source page count (0 if N/A)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Level    int        // Heading depth, 1 for top-level sections, 0 for leaf text
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Chunk is one window over the flattened document text.
type Chunk struct {
	Text      string
	Index     int
	PageStart int
	PageEnd   int
}

// Builder assembles a DocTree from a stream of headings and text blocks.
// Each heading nests under the nearest open heading of a lower level.
type Builder struct {
	title string
	root  *DocNode
	stack []frame
	text  strings.Builder
}

type frame struct {
	node  *DocNode
	level int
}

func NewBuilder(title string) *Builder {
	root := &DocNode{Title: title}
	return &Builder{title: title, root: root, stack: []frame{{node: root}}}
}

// Heading opens a new section at level (1-based).
func (b *Builder) Heading(level int, title string, page int) {
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return
	}
	if level < 1 {
		level = 1
	}
	b.flush()
	n := &DocNode{Title: title, Level: level, Page: page}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, n)
	b.stack = append(b.stack, frame{node: n, level: level})
}

// Text appends a block of body text to the open section.
func (b *Builder) Text(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

// Leaf appends a standalone text node carrying its own page number.
func (b *Builder) Leaf(t string, page int) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	b.flush()
	top := b.stack[len(b.stack)-1].node
	top.Children = append(top.Children, &DocNode{Text: t, Page: page})
}

func (b *Builder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// Tree finishes the document. Text found before any heading becomes the
// first child so nothing is lost.
func (b *Builder) Tree() *DocTree {
	b.flush()
	tree := &DocTree{Title: b.title}
	if b.root.Text != "" {
		tree.Children = append(tree.Children, &DocNode{Text: b.root.Text})
	}
	tree.Children = append(tree.Children, b.root.Children...)
	tree.Pages = maxPage(tree.Children)
	return tree
}

func maxPage(nodes []*DocNode) int {
	m := 0
	for _, n := range nodes {
		if n.Page > m {
			m = n.Page
		}
		if c := maxPage(n.Children); c > m {
			m = c
		}
	}
	return m
}

// Line is one line of flattened text and the page it came from.
type Line struct {
	Text string
	Page int
}

// Flat is a document rendered as plain text.
type Flat struct {
	Title string
	Text  string
	Lines []Line
	Pages int
}

// Flatten renders the tree as text. Section titles become "#"-prefixed
// lines, one "#" per level, and blocks are separated by blank lines.
// Nodes without a page inherit the page of the node before them.
func Flatten(tree *DocTree) Flat {
	flat := Flat{Title: tree.Title, Pages: tree.Pages}
	page := 0
	emit := func(text string) {
		if len(flat.Lines) > 0 {
			flat.Lines = append(flat.Lines, Line{Page: page})
		}
		for _, l := range strings.Split(text, "\n") {
			flat.Lines = append(flat.Lines, Line{Text: strings.TrimRight(l, " \t\r"), Page: page})
		}
	}
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, n := range nodes {
			if n.Page > 0 {
				page = n.Page
			}
			if n.Title != "" && n.Level > 0 {
				emit(strings.Repeat("#", n.Level) + " " + n.Title)
			}
			if n.Text != "" {
				emit(n.Text)
			}
			walk(n.Children)
		}
	}
	walk(tree.Children)

	texts := make([]string, len(flat.Lines))
	for i, l := range flat.Lines {
		texts[i] = l.Text
	}
	flat.Text = strings.Join(texts, "\n")
	if flat.Pages == 0 {
		flat.Pages = page
	}
	return flat
}
