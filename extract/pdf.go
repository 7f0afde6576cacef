package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"rag/types"
)

// PDF extracts the text-showing operators from every page's content stream.
// Layout is not reconstructed; the result is reading-order-ish text, which is
// what the chunker needs.
func PDF(data []byte) (*types.ExtractResult, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrExtractionFailed, err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		reader, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || reader == nil {
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			continue
		}
		if text := contentStreamText(content); text != "" {
			pages = append(pages, text)
		}
	}

	extracted := strings.Join(pages, "\n\n")
	if strings.TrimSpace(extracted) == "" {
		return nil, fmt.Errorf("%w: pdf has no extractable text", types.ErrExtractionFailed)
	}

	return &types.ExtractResult{
		Content: extracted,
		Units:   ctx.PageCount,
		Type:    "pdf",
	}, nil
}

// contentStreamText pulls the literal strings shown by Tj, ', " and TJ
// operators out of a decoded page content stream. Hex strings and glyph
// remapping via font encodings are not resolved; text stored as plain
// literals (the common case for generated reports) comes through as is.
func contentStreamText(stream []byte) string {
	var out strings.Builder
	var pending []string

	i := 0
	for i < len(stream) {
		switch c := stream[i]; {
		case c == '(':
			str, next := parseLiteralString(stream, i)
			pending = append(pending, str)
			i = next
		case c == '%':
			for i < len(stream) && stream[i] != '\n' {
				i++
			}
		case isOperatorStart(c):
			op, next := parseOperator(stream, i)
			switch op {
			case "Tj", "'", "\"", "TJ":
				for _, s := range pending {
					out.WriteString(s)
				}
				if len(pending) > 0 {
					out.WriteByte(' ')
				}
			case "Td", "TD", "T*", "ET":
				out.WriteByte('\n')
			}
			pending = pending[:0]
			i = next
		default:
			i++
		}
	}

	return strings.TrimSpace(collapseBlankRuns(out.String()))
}

// parseLiteralString reads a PDF literal string starting at the '(' at pos,
// honouring escape sequences and balanced parentheses.
func parseLiteralString(stream []byte, pos int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := pos
	for i < len(stream) {
		c := stream[i]
		switch c {
		case '\\':
			if i+1 < len(stream) {
				i++
				switch e := stream[i]; e {
				case 'n':
					sb.WriteByte('\n')
				case 'r', 'b', 'f':
					// ignored control escapes
				case 't':
					sb.WriteByte('\t')
				case '(', ')', '\\':
					sb.WriteByte(e)
				default:
					if e >= '0' && e <= '7' {
						val := int(e - '0')
						for d := 0; d < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; d++ {
							i++
							val = val*8 + int(stream[i]-'0')
						}
						if val >= 32 && val < 127 {
							sb.WriteByte(byte(val))
						}
					}
				}
			}
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
		i++
	}
	return sb.String(), i
}

func isOperatorStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '\'' || c == '"'
}

func parseOperator(stream []byte, pos int) (string, int) {
	i := pos
	for i < len(stream) && (stream[i] >= 'A' && stream[i] <= 'Z' ||
		stream[i] >= 'a' && stream[i] <= 'z' || stream[i] == '*' ||
		stream[i] == '\'' || stream[i] == '"') {
		i++
	}
	return string(stream[pos:i]), i
}

func collapseBlankRuns(s string) string {
	lines := strings.Split(s, "\n")
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}
