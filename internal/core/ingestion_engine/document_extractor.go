package ingestion_engine

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/markdave123-py/storage-indexer/internal/core"
	"github.com/markdave123-py/storage-indexer/internal/models"
)

var _ core.PageExtractor = (*PDFExtractor)(nil)

// PDFExtractor implements core.PageExtractor using ledongthuc/pdf.
// Parsing runs in the calling goroutine, one page after another.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages opens data as a PDF and returns the normalized text of every page.
// Pages without text are returned with an empty Text so page numbering stays
// contiguous. Any parser failure is reported as *core.PdfParseError.
func (e *PDFExtractor) ExtractPages(data []byte) (pages []models.ExtractedPage, err error) {
	if len(data) == 0 {
		return nil, &core.PdfParseError{Err: errors.New("empty document")}
	}

	// The parser panics on some malformed inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &core.PdfParseError{Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &core.PdfParseError{Err: err}
	}

	n := r.NumPage()
	pages = make([]models.ExtractedPage, 0, n)
	for i := 1; i <= n; i++ {
		text, err := pageText(r.Page(i))
		if err != nil {
			return nil, &core.PdfParseError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		pages = append(pages, models.ExtractedPage{PageNumber: i, Text: Normalize(text)})
	}
	return pages, nil
}

// wordGap is the TJ displacement, in thousandths of an em, at or below which
// two pieces of one TJ array are treated as separate words.
const wordGap = -200

// pageText walks the page content stream and joins every shown string with a
// single space. A TJ array counts as one item; only wide negative
// displacements inside it become spaces.
func pageText(p pdf.Page) (text string, err error) {
	if p.V.IsNull() {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	fonts := make(map[string]pdf.TextEncoding)
	for _, name := range p.Fonts() {
		fonts[name] = p.Font(name).Encoder()
	}

	var (
		items []string
		enc   pdf.TextEncoding
	)
	decode := func(raw string) string {
		if enc == nil {
			return raw
		}
		return enc.Decode(raw)
	}
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			items = append(items, s)
		}
	}

	show := func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}

		switch op {
		case "Tf":
			if len(args) != 2 {
				panic("bad Tf operator")
			}
			enc = fonts[args[0].Name()]
		case "Tj", "'":
			if len(args) != 1 {
				panic("bad " + op + " operator")
			}
			add(decode(args[0].RawString()))
		case "\"":
			if len(args) != 3 {
				panic("bad \" operator")
			}
			add(decode(args[2].RawString()))
		case "TJ":
			if len(args) != 1 {
				panic("bad TJ operator")
			}
			var sb strings.Builder
			arr := args[0]
			for i := 0; i < arr.Len(); i++ {
				v := arr.Index(i)
				switch v.Kind() {
				case pdf.String:
					sb.WriteString(decode(v.RawString()))
				case pdf.Integer, pdf.Real:
					if v.Float64() <= wordGap {
						sb.WriteByte(' ')
					}
				}
			}
			add(sb.String())
		}
	}

	// Contents is a single stream or an array of streams read as one.
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Null:
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			pdf.Interpret(contents.Index(i), show)
		}
	default:
		pdf.Interpret(contents, show)
	}
	return strings.Join(items, " "), nil
}
