package rule

import "strings"

// Template is a warning message with named {placeholder} fields.
// Doubled braces ({{ and }}) render as literal braces.
type Template string

// Format substitutes placeholders from values. If any placeholder has no value,
// or a brace is unbalanced, it returns the raw template and false.
func (t Template) Format(values map[string]string) (string, bool) {
	s := string(t)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return s, false
			}
			name := s[i+1 : i+1+end]
			// A format spec (e.g. {deger:.2f}) is accepted and ignored; see FormatSpecs.
			if colon := strings.IndexByte(name, ':'); colon >= 0 {
				name = name[:colon]
			}
			v, ok := values[name]
			if !ok {
				return s, false
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return s, false
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

// FormatSpecs returns the placeholders that carry a format spec, e.g.
// "deger:.2f". Format substitutes the value as given and drops the spec.
func (t Template) FormatSpecs() []string {
	s := string(t)
	var specs []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			break
		}
		if name := s[i+1 : i+1+end]; strings.IndexByte(name, ':') >= 0 {
			specs = append(specs, name)
		}
		i += end + 1
	}
	return specs
}

// String returns the raw template text.
func (t Template) String() string { return string(t) }
