package outline

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// bulletGlyphs are stripped from the start of a line when followed by a space.
const bulletGlyphs = "•●▪■□◦○◆◇►▶▸➢➤✓✔✗*·-–—+»"

// mojibakeMarkers are byte sequences left behind when UTF-8 Vietnamese text
// is decoded as Latin-1/CP1252.
var mojibakeMarkers = []string{"Ä‘", "Æ°", "Æ¡", "á»", "áº", "Ã¢", "Ã´", "Ãª", "Ã¡", "Ã©", "Ã³", "â€"}

// NormalizeLine cleans one raw line: NFC, trim, bullet strip, whitespace
// collapse. When the line looks split-lettered or garbled and a repairer is
// configured, the repaired text is used instead. It never fails.
func NormalizeLine(raw string, c Collaborators) string {
	s := norm.NFC.String(raw)
	s = collapseSpaces(s)
	if s == "" {
		return ""
	}
	if isDivider(s) {
		return s
	}
	s = stripBullet(s)
	if needsRepair(s) {
		if fixed, ok := c.repair(s); ok {
			s = stripBullet(collapseSpaces(norm.NFC.String(fixed)))
		}
	}
	return s
}

// SplitLines normalizes every line of text, keeping blank lines so that
// paragraph structure survives.
func SplitLines(text string, c Collaborators) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	out := make([]Line, 0, len(raw))
	for i, r := range raw {
		out = append(out, Line{Text: NormalizeLine(r, c), Index: i})
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff'
	}), " ")
}

func stripBullet(s string) string {
	for {
		r := []rune(s)
		if len(r) < 2 || !strings.ContainsRune(bulletGlyphs, r[0]) || r[1] != ' ' {
			return s
		}
		s = strings.TrimSpace(string(r[2:]))
	}
}

// needsRepair detects split letters ("C h ư ơ n g") and encoding damage.
func needsRepair(s string) bool {
	if strings.ContainsRune(s, '\ufffd') {
		return true
	}
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	run := 0
	for _, f := range strings.Fields(s) {
		if runeLen(f) == 1 && unicode.IsLetter([]rune(f)[0]) {
			run++
			if run >= 4 {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

// isDivider reports a strong divider line: a run of at least five
// repeated divider characters, spaces allowed between them.
func isDivider(s string) bool {
	n := 0
	for _, r := range s {
		switch r {
		case '=', '-', '_', '—', '–', '─', '━', '═', '~', '*':
			n++
		case ' ':
		default:
			return false
		}
	}
	return n >= 5
}
