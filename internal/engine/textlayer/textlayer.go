// Package textlayer decides whether a PDF carries a usable embedded text
// layer. It uses ledongthuc/pdf (pure Go) so classification never needs the
// heavier rendering stack.
package textlayer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/tom832/MinerU/internal/domain"
)

// Thresholds tune the TEXT/OCR decision.
type Thresholds struct {
	// MinCharsPerPage is the average number of non-space characters per
	// page required for TEXT.
	MinCharsPerPage int
	// MinTextPageRatio is the share of pages that must carry at least one
	// character for TEXT.
	MinTextPageRatio float64
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{MinCharsPerPage: 50, MinTextPageRatio: 0.5}
}

// Classify returns PipelineText when data has enough extractable text and
// PipelineOCR otherwise.
func Classify(data []byte, th Thresholds) (domain.Pipeline, error) {
	counts, err := PageCharCounts(data)
	if err != nil {
		return "", err
	}
	return Decide(counts, th), nil
}

// Decide applies th to per-page character counts.
func Decide(counts []int, th Thresholds) domain.Pipeline {
	if len(counts) == 0 {
		return domain.PipelineOCR
	}
	total, withText := 0, 0
	for _, c := range counts {
		total += c
		if c > 0 {
			withText++
		}
	}
	avg := total / len(counts)
	ratio := float64(withText) / float64(len(counts))
	if avg >= th.MinCharsPerPage && ratio >= th.MinTextPageRatio {
		return domain.PipelineText
	}
	return domain.PipelineOCR
}

// PageCharCounts returns the number of non-space characters on each page.
// Pages whose text cannot be decoded count as zero.
func PageCharCounts(data []byte) (counts []int, err error) {
	if len(data) == 0 {
		return nil, domain.EngineError("classify pdf", fmt.Errorf("empty PDF content"))
	}

	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			counts = nil
			err = domain.EngineError("classify pdf", fmt.Errorf("malformed PDF: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.EngineError("open pdf", err)
	}

	n := r.NumPage()
	counts = make([]int, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			counts = append(counts, 0)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			counts = append(counts, 0)
			continue
		}
		counts = append(counts, countVisible(text))
	}
	return counts, nil
}

func countVisible(s string) int {
	return utf8.RuneCountInString(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, s))
}
