package parser

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"lexflow/internal/util"
)

// Content margins in points. Text placed outside this box (running
// headers, footers, the margin-note gutter on the right) is discarded.
const (
	marginLeft   = 30.0
	marginTop    = 40.0
	marginRight  = 110.0
	marginBottom = 40.0
)

type PageText struct {
	Number   int    `json:"number"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

type ExtractionStats struct {
	TotalPages    int `json:"total_pages"`
	EmptyPages    int `json:"empty_pages"`
	GarbagePages  int `json:"garbage_pages"`
	FallbackPages int `json:"fallback_pages"`
}

// OCRClient recognizes text on a page image. Wired to a vision-capable
// provider in production; nil disables the fallback.
type OCRClient interface {
	RecognizePage(ctx context.Context, path string, pageNum int) (string, error)
}

type Extractor struct {
	OCR OCRClient
}

// ExtractPages pulls per-page text from a PDF with margin clipping.
// Pages that come back empty or as extractor mojibake are retried
// through the OCR fallback when one is configured. A document with no
// extractable text at all fails with util.ErrNoExtractableText.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]PageText, ExtractionStats, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, ExtractionStats{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	stats := ExtractionStats{TotalPages: r.NumPage()}
	pages := make([]PageText, 0, r.NumPage())
	anyText := false

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			stats.EmptyPages++
			pages = append(pages, PageText{Number: i})
			continue
		}
		text := clipPageText(p)
		switch {
		case strings.TrimSpace(text) == "":
			stats.EmptyPages++
		case IsGarbageText(text):
			stats.GarbagePages++
			text = ""
		}
		if text == "" && e.OCR != nil {
			recognized, ocrErr := e.OCR.RecognizePage(ctx, path, i)
			if ocrErr != nil {
				log.Printf("ocr fallback failed for %s page %d: %v", path, i, ocrErr)
			} else if strings.TrimSpace(recognized) != "" {
				text = recognized
				stats.FallbackPages++
				pages = append(pages, PageText{Number: i, Text: util.SanitizeText(text), Fallback: true})
				anyText = true
				continue
			}
		}
		if text == "" && e.OCR == nil {
			stats.FallbackPages++
		}
		if strings.TrimSpace(text) != "" {
			anyText = true
		}
		pages = append(pages, PageText{Number: i, Text: util.SanitizeText(text)})
	}

	if !anyText {
		return nil, stats, util.ErrNoExtractableText
	}
	return pages, stats, nil
}

// FullText joins cleaned page texts into one document string.
func FullText(pages []PageText) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) == "" {
			continue
		}
		parts = append(parts, p.Text)
	}
	return CleanText(strings.Join(parts, "\n\n"))
}

func clipPageText(p pdf.Page) string {
	w, h := pageSize(p)
	texts := p.Content().Text
	kept := texts[:0:0]
	for _, t := range texts {
		if t.X < marginLeft || t.X > w-marginRight {
			continue
		}
		if t.Y < marginBottom || t.Y > h-marginTop {
			continue
		}
		kept = append(kept, t)
	}
	return assembleRows(kept)
}

func pageSize(p pdf.Page) (float64, float64) {
	box := p.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return 595, 842 // A4 default
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return 595, 842
	}
	return w, h
}

// assembleRows groups fragments into visual rows by Y and reads each
// row left to right. PDF Y grows upward, so rows sort descending.
func assembleRows(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sort.SliceStable(texts, func(i, j int) bool {
		if math.Abs(texts[i].Y-texts[j].Y) > 2 {
			return texts[i].Y > texts[j].Y
		}
		return texts[i].X < texts[j].X
	})
	var b strings.Builder
	lastY := texts[0].Y
	lastEnd := -1.0
	for _, t := range texts {
		if math.Abs(t.Y-lastY) > 2 {
			b.WriteByte('\n')
			lastY = t.Y
			lastEnd = -1
		} else if lastEnd >= 0 && t.X-lastEnd > 1.5 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		lastEnd = t.X + t.W
	}
	return b.String()
}
