package planner

import "strings"

// renderTemplate substitutes {token} placeholders from tokens into tmpl.
// "{{" and "}}" escape to literal "{" and "}"; a brace-delimited word with
// no matching token is left verbatim (spec.md §4.7 "Changelog generation"
// / DESIGN.md Open Question decision #2).
//
// text/template isn't used here: its own "{{ }}" delimiter syntax would
// collide with this format's use of doubled braces as a literal-brace
// escape rather than an action delimiter, so reusing it would mean
// fighting its lexer instead of using it.
func renderTemplate(tmpl string, tokens map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		switch {
		case strings.HasPrefix(tmpl[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case strings.HasPrefix(tmpl[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case tmpl[i] == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				i = len(tmpl)
				continue
			}
			token := tmpl[i+1 : i+end]
			if value, ok := tokens[token]; ok {
				b.WriteString(value)
			} else {
				b.WriteString(tmpl[i : i+end+1])
			}
			i += end + 1
		default:
			b.WriteByte(tmpl[i])
			i++
		}
	}
	return b.String()
}
