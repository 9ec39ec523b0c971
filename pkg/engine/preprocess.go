package engine

import "strings"

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites a grid script into something zygomys accepts.
// ; comments become //, :keyword becomes the string "__kw_keyword", and a
// hyphen joining two identifier characters becomes an underscore, so
// half-width reads as one symbol. zygomys would parse it as a subtraction.
// String literals and := pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			end := literalEnd(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = len(source) - i
			}
			out.WriteString("//")
			out.WriteString(source[i : i+end])
			i += end

		case c == ':' && i+1 < len(source) && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			end := i + 1
			for end < len(source) && isKWChar(source[end]) {
				end++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:end] + `"`)
			i = end

		case c == '-' && i > 0 && i+1 < len(source) && isIdentChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// literalEnd returns the index just past the string literal opening at i.
// Double-quoted literals honor backslash escapes; backtick literals are raw.
// An unterminated literal runs to the end of source.
func literalEnd(source string, i int) int {
	quote := source[i]
	j := i + 1
	for j < len(source) && source[j] != quote {
		if quote == '"' && source[j] == '\\' {
			j++
		}
		j++
	}
	return min(j+1, len(source))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}
