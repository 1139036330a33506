package declread

import (
	"fmt"
	"strings"
	"unicode"
)

// NixReader reads list values from a Nix expression. It understands the
// shapes an attribute list takes in a system configuration:
//
//	key = [ a b ];
//	key = with pkgs; [ a b ];
//
// including line and block comments inside the list. It is a focused
// scanner, not a Nix evaluator; a parenthesized element comes back as
// one raw token.
type NixReader struct{}

func (NixReader) Values(content []byte, key string) ([]string, error) {
	src := string(content)
	i := findAssignment(src, key)
	if i < 0 {
		return nil, fmt.Errorf("no assignment of %q found", key)
	}
	i = skipSpace(src, i)
	if strings.HasPrefix(src[i:], "with") && i+4 < len(src) && !isIdentChar(src[i+4]) {
		semi := strings.IndexByte(src[i:], ';')
		if semi < 0 {
			return nil, fmt.Errorf("unterminated with clause for %q", key)
		}
		i = skipSpace(src, i+semi+1)
	}
	if i >= len(src) || src[i] != '[' {
		return nil, fmt.Errorf("value of %q is not a list", key)
	}
	return scanList(src, i+1)
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '-' || c == '\'' || c == '.' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// findAssignment locates key at assignment position and returns the
// index just past its equals sign. Occurrences embedded in longer
// identifiers or attribute paths do not match.
func findAssignment(src, key string) int {
	from := 0
	for {
		i := strings.Index(src[from:], key)
		if i < 0 {
			return -1
		}
		i += from
		from = i + 1
		if i > 0 && isIdentChar(src[i-1]) {
			continue
		}
		j := i + len(key)
		if j < len(src) && isIdentChar(src[j]) {
			continue
		}
		j = skipSpace(src, j)
		if j < len(src) && src[j] == '=' && (j+1 >= len(src) || src[j+1] != '=') {
			return j + 1
		}
	}
}

// skipSpace advances past whitespace and comments.
func skipSpace(src string, i int) int {
	for i < len(src) {
		switch {
		case unicode.IsSpace(rune(src[i])):
			i++
		case src[i] == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return len(src)
			}
			i += 2 + end + 2
		default:
			return i
		}
	}
	return i
}

// scanList collects whitespace separated elements until the matching
// close bracket. Nested brackets and parens keep an element together
// and strings may contain any delimiter.
func scanList(src string, i int) ([]string, error) {
	var vals []string
	var tok strings.Builder
	depth := 0
	flush := func() {
		if tok.Len() > 0 {
			vals = append(vals, tok.String())
			tok.Reset()
		}
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == '#':
			flush()
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case strings.HasPrefix(src[i:], "/*"):
			flush()
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment in list")
			}
			i += 2 + end + 2
		case c == '"':
			tok.WriteByte(c)
			i++
			for i < len(src) {
				tok.WriteByte(src[i])
				if src[i] == '"' && src[i-1] != '\\' {
					break
				}
				i++
			}
			i++
		case c == '[' || c == '(':
			depth++
			tok.WriteByte(c)
			i++
		case c == ')':
			depth--
			tok.WriteByte(c)
			i++
		case c == ']':
			if depth == 0 {
				flush()
				return vals, nil
			}
			depth--
			tok.WriteByte(c)
			i++
		case unicode.IsSpace(rune(c)):
			if depth == 0 {
				flush()
			} else {
				tok.WriteByte(c)
			}
			i++
		default:
			tok.WriteByte(c)
			i++
		}
	}
	return nil, fmt.Errorf("unterminated list")
}
