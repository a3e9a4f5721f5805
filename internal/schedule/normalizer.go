package schedule

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/schedule2ical/internal/pdf"
)

// DefaultBanners are substrings of the browser header and footer printed on
// every page of the schedule.
var DefaultBanners = []string{"MyUW", "https"}

// DefaultTrailingTrim removes the newline that closes every text box
const DefaultTrailingTrim = 1

// Normalizer turns extracted pages into candidate line groups
type Normalizer struct {
	trim    int
	banners []string
}

// NewNormalizer creates a normalizer that strips trim trailing characters from
// each block. With no banners, DefaultBanners are used.
func NewNormalizer(trim int, banners ...string) *Normalizer {
	if len(banners) == 0 {
		banners = DefaultBanners
	}
	if trim < 0 {
		trim = 0
	}
	return &Normalizer{trim: trim, banners: banners}
}

// Normalize returns one line group per retained block, in document order.
// The first page only carries the schedule header and is skipped.
func (n *Normalizer) Normalize(pages []pdf.Page) [][]string {
	var groups [][]string
	for i, page := range pages {
		if i == 0 {
			continue
		}
		groups = append(groups, n.NormalizePage(page)...)
	}
	return groups
}

// NormalizePage drops the page timestamp (the first block), banner blocks and
// non-text primitives, then splits each remaining block into trimmed lines.
func (n *Normalizer) NormalizePage(page pdf.Page) [][]string {
	if len(page.Blocks) == 0 {
		return nil
	}

	var groups [][]string
	for _, block := range page.Blocks[1:] {
		if !block.IsTextBox() || n.isBanner(block.Text) {
			continue
		}
		groups = append(groups, n.lines(block.Text))
	}
	return groups
}

func (n *Normalizer) isBanner(text string) bool {
	for _, b := range n.banners {
		if strings.Contains(text, b) {
			return true
		}
	}
	return false
}

func (n *Normalizer) lines(text string) []string {
	runes := []rune(norm.NFKC.String(text))
	if n.trim >= len(runes) {
		runes = nil
	} else {
		runes = runes[:len(runes)-n.trim]
	}

	parts := strings.Split(string(runes), "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
