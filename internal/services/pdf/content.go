package pdf

import (
	"strconv"
	"strings"
)

// DecodeContentStream pulls the text shown by a decoded page content stream.
// It understands the text-showing operators (Tj, TJ, ' and ") and treats
// positioning operators as line breaks. Glyphs mapped through custom font
// encodings come out as their raw byte values.
func DecodeContentStream(content []byte) string {
	s := &scanner{src: content}
	var (
		out      strings.Builder
		operands []operand
	)

	newline := func() {
		str := out.String()
		if len(str) > 0 && !strings.HasSuffix(str, "\n") {
			out.WriteByte('\n')
		}
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}

		switch tok.kind {
		case tokString, tokNumber, tokArray:
			operands = append(operands, tok)
			continue
		case tokOperator:
		default:
			continue
		}

		switch tok.text {
		case "Tj":
			if str, ok := lastString(operands); ok {
				out.WriteString(str)
			}
		case "'", `"`:
			newline()
			if str, ok := lastString(operands); ok {
				out.WriteString(str)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == tokArray {
				for _, el := range operands[n-1].items {
					switch el.kind {
					case tokString:
						out.WriteString(el.text)
					case tokNumber:
						// large negative kerning is how generators encode a space
						if v, err := strconv.ParseFloat(el.text, 64); err == nil && v < -200 {
							out.WriteByte(' ')
						}
					}
				}
			}
		case "Td", "TD", "T*", "Tm", "ET":
			newline()
		}
		operands = operands[:0]
	}

	return out.String()
}

func lastString(operands []operand) (string, bool) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokString {
			return operands[i].text, true
		}
	}
	return "", false
}

type tokenKind int

const (
	tokOther tokenKind = iota
	tokString
	tokNumber
	tokArray
	tokOperator
)

type operand struct {
	kind  tokenKind
	text  string
	items []operand
}

type scanner struct {
	src []byte
	pos int
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return strings.IndexByte("()<>[]{}/%", c) >= 0
}

func (s *scanner) skip() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case isWhite(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) next() (operand, bool) {
	s.skip()
	if s.pos >= len(s.src) {
		return operand{}, false
	}

	c := s.src[s.pos]
	switch {
	case c == '(':
		s.pos++
		return operand{kind: tokString, text: s.literal()}, true
	case c == '<' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '<':
		s.pos += 2
		return operand{kind: tokOther}, true
	case c == '>' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '>':
		s.pos += 2
		return operand{kind: tokOther}, true
	case c == '<':
		s.pos++
		return operand{kind: tokString, text: s.hex()}, true
	case c == '[':
		s.pos++
		return operand{kind: tokArray, items: s.array()}, true
	case c == ']' || c == '{' || c == '}' || c == '>' || c == ')':
		s.pos++
		return operand{kind: tokOther}, true
	case c == '/':
		s.pos++
		s.word()
		return operand{kind: tokOther}, true
	}

	w := s.word()
	if w == "" {
		s.pos++
		return operand{kind: tokOther}, true
	}
	if _, err := strconv.ParseFloat(w, 64); err == nil {
		return operand{kind: tokNumber, text: w}, true
	}
	return operand{kind: tokOperator, text: w}, true
}

func (s *scanner) word() string {
	start := s.pos
	for s.pos < len(s.src) && !isWhite(s.src[s.pos]) && !isDelim(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) array() []operand {
	var items []operand
	for {
		s.skip()
		if s.pos >= len(s.src) {
			return items
		}
		if s.src[s.pos] == ']' {
			s.pos++
			return items
		}
		tok, ok := s.next()
		if !ok {
			return items
		}
		if tok.kind == tokString || tok.kind == tokNumber {
			items = append(items, tok)
		}
	}
}

// literal reads a (...) string; the opening paren is already consumed.
func (s *scanner) literal() string {
	var b strings.Builder
	depth := 1
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			b.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return b.String()
			}
			b.WriteByte(c)
		case '\\':
			s.escape(&b)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (s *scanner) escape(b *strings.Builder) {
	if s.pos >= len(s.src) {
		return
	}
	c := s.src[s.pos]
	s.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '\r':
		if s.pos < len(s.src) && s.src[s.pos] == '\n' {
			s.pos++
		}
	case '\n':
	default:
		if c >= '0' && c <= '7' {
			v := int(c - '0')
			for i := 0; i < 2 && s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '7'; i++ {
				v = v*8 + int(s.src[s.pos]-'0')
				s.pos++
			}
			b.WriteByte(byte(v))
			return
		}
		b.WriteByte(c)
	}
}

// hex reads a <...> string; the opening bracket is already consumed.
func (s *scanner) hex() string {
	var digits []byte
	for s.pos < len(s.src) && s.src[s.pos] != '>' {
		if c := s.src[s.pos]; !isWhite(c) {
			digits = append(digits, c)
		}
		s.pos++
	}
	s.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return decodeUTF16(out)
}

// decodeUTF16 handles hex strings written as UTF-16BE with a byte order mark.
func decodeUTF16(b []byte) string {
	if len(b) < 2 || b[0] != 0xFE || b[1] != 0xFF {
		return string(b)
	}
	var sb strings.Builder
	for i := 2; i+1 < len(b); i += 2 {
		sb.WriteRune(rune(uint16(b[i])<<8 | uint16(b[i+1])))
	}
	return sb.String()
}
