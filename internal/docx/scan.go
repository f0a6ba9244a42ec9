package docx

import "bytes"

// Low-level scanning over WordprocessingML bytes. The document XML is
// never re-serialized wholesale: untouched markup passes through
// byte-for-byte so Word-specific attributes and namespaces survive a
// round trip.

// scanTag returns the index just past the '>' that closes the tag
// starting at data[start] (data[start] must be '<'). Quoted attribute
// values may contain '>'. Returns -1 for an unterminated tag.
func scanTag(data []byte, start int) int {
	quote := byte(0)
	for i := start + 1; i < len(data); i++ {
		c := data[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return -1
}

// tagName returns the element name of a start or end tag, including any
// namespace prefix.
func tagName(tag []byte) string {
	i := 1
	if i < len(tag) && tag[i] == '/' {
		i++
	}
	j := i
	for j < len(tag) {
		switch tag[j] {
		case ' ', '\t', '\r', '\n', '/', '>':
			return string(tag[i:j])
		}
		j++
	}
	return string(tag[i:j])
}

func isEndTag(tag []byte) bool {
	return len(tag) > 1 && tag[1] == '/'
}

func isSelfClosing(tag []byte) bool {
	return len(tag) > 1 && tag[len(tag)-2] == '/'
}

// skipMarkupDecl returns the index just past a comment, CDATA section,
// processing instruction or doctype starting at data[start], or -1 when
// data[start] does not begin one.
func skipMarkupDecl(data []byte, start int) int {
	rest := data[start:]
	switch {
	case bytes.HasPrefix(rest, []byte("<!--")):
		if end := bytes.Index(rest[4:], []byte("-->")); end >= 0 {
			return start + 4 + end + 3
		}
	case bytes.HasPrefix(rest, []byte("<![CDATA[")):
		if end := bytes.Index(rest[9:], []byte("]]>")); end >= 0 {
			return start + 9 + end + 3
		}
	case bytes.HasPrefix(rest, []byte("<?")):
		if end := bytes.Index(rest[2:], []byte("?>")); end >= 0 {
			return start + 2 + end + 2
		}
	case bytes.HasPrefix(rest, []byte("<!")):
		return scanTag(data, start)
	}
	return -1
}

// elementEnd locates the end tag matching an element named name whose
// open tag ends at from. It returns the index of the end tag's '<' and
// the index just past its '>'. Nested elements of the same name are
// counted. Both results are -1 when no matching end tag exists.
func elementEnd(data []byte, from int, name string) (int, int) {
	depth := 1
	i := from
	for i < len(data) {
		lt := bytes.IndexByte(data[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(data, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(data, i)
		if end < 0 {
			break
		}
		tag := data[i:end]
		if tagName(tag) == name {
			switch {
			case isEndTag(tag):
				depth--
				if depth == 0 {
					return i, end
				}
			case !isSelfClosing(tag):
				depth++
			}
		}
		i = end
	}
	return -1, -1
}

// elementContent returns the inner XML of the first element named name,
// and whether such an element was found.
func elementContent(data []byte, name string) ([]byte, bool) {
	i := 0
	for i < len(data) {
		lt := bytes.IndexByte(data[i:], '<')
		if lt < 0 {
			break
		}
		i += lt
		if skip := skipMarkupDecl(data, i); skip >= 0 {
			i = skip
			continue
		}
		end := scanTag(data, i)
		if end < 0 {
			break
		}
		tag := data[i:end]
		if tagName(tag) == name && !isEndTag(tag) {
			if isSelfClosing(tag) {
				return nil, true
			}
			if closeStart, _ := elementEnd(data, end, name); closeStart >= 0 {
				return data[end:closeStart], true
			}
			return nil, false
		}
		i = end
	}
	return nil, false
}

// attrValue returns the value of the named attribute in a tag, or ""
// when absent.
func attrValue(tag []byte, name string) string {
	needle := []byte(name + "=")
	i := 0
	for {
		j := bytes.Index(tag[i:], needle)
		if j < 0 {
			return ""
		}
		j += i
		if j == 0 || !isSpaceByte(tag[j-1]) {
			i = j + len(needle)
			continue
		}
		k := j + len(needle)
		if k >= len(tag) {
			return ""
		}
		quote := tag[k]
		if quote != '"' && quote != '\'' {
			i = k
			continue
		}
		end := bytes.IndexByte(tag[k+1:], quote)
		if end < 0 {
			return ""
		}
		return string(tag[k+1 : k+1+end])
	}
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
