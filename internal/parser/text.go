package parser

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// TextParser handles plain text files. Form feeds mark page breaks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	b := doctree.NewBuilder(baseTitle(filename))
	var current strings.Builder
	page, paraPage := 0, 0
	if bytes.IndexByte(data, '\f') >= 0 {
		page = 1
	}
	flush := func() {
		if current.Len() > 0 {
			b.Leaf(current.String(), paraPage)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if n := strings.Count(line, "\f"); n > 0 {
			flush()
			page += n
			line = strings.ReplaceAll(line, "\f", "")
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() == 0 {
			paraPage = page
		} else {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Tree(), nil
}
