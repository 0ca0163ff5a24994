package mcstatus

import (
	"html"
	"strings"
	"unicode"
)

const (
	motdSigil     = '§'
	motdReset     = 'r'
	motdLineBreak = "<br>"
)

var motdColors = map[rune]string{
	'0': "#000000",
	'1': "#0000AA",
	'2': "#00AA00",
	'3': "#00AAAA",
	'4': "#AA0000",
	'5': "#AA00AA",
	'6': "#FFAA00",
	'7': "#AAAAAA",
	'8': "#555555",
	'9': "#5555FF",
	'a': "#55FF55",
	'b': "#55FFFF",
	'c': "#FF5555",
	'd': "#FF55FF",
	'e': "#FFFF55",
	'f': "#FFFFFF",
}

var motdFormats = map[rune]string{
	'k': `<span class="obfuscated">`,
	'l': `<span style="font-weight:bold">`,
	'm': `<span style="text-decoration:line-through">`,
	'n': `<span style="text-decoration:underline">`,
	'o': `<span style="font-style:italic">`,
}

// RenderMotd converts MOTD lines with legacy colour codes into markup.
// Every colour or format code closes the current span and opens a styled
// one, a reset code opens a plain one. Text is HTML escaped and lines are
// joined with line breaks. Every line is wrapped in balanced spans.
func RenderMotd(lines []string) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = renderMotdLine(line)
	}
	return strings.Join(rendered, motdLineBreak)
}

func renderMotdLine(line string) string {
	var b, text strings.Builder
	flush := func() {
		b.WriteString(html.EscapeString(text.String()))
		text.Reset()
	}

	b.WriteString("<span>")
	rr := []rune(line)
	for i := 0; i < len(rr); i++ {
		if rr[i] != motdSigil {
			text.WriteRune(rr[i])
			continue
		}

		// A trailing sigil has no code and is dropped.
		if i+1 >= len(rr) {
			break
		}

		i++
		span, ok := motdSpan(unicode.ToLower(rr[i]))
		if !ok {
			continue
		}

		flush()
		b.WriteString("</span>")
		b.WriteString(span)
	}
	flush()
	b.WriteString("</span>")

	return b.String()
}

func motdSpan(code rune) (string, bool) {
	if code == motdReset {
		return "<span>", true
	}

	if color, ok := motdColors[code]; ok {
		return `<span style="color:` + color + `">`, true
	}

	span, ok := motdFormats[code]
	return span, ok
}

// Markup returns the MOTD as markup. Markup delivered by the primary API is
// passed through unchanged, legacy lines are rendered with RenderMotd.
func (m Motd) Markup() string {
	if m.Origin == PrimarySource {
		return strings.Join(m.HTML, motdLineBreak)
	}

	lines := m.Raw
	if len(lines) == 0 {
		lines = m.Clean
	}
	return RenderMotd(lines)
}
