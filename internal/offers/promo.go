package offers

import (
	"fmt"
	"strings"
	"sync"
)

// IntSource yields integers in [0, n). *math/rand.Rand satisfies it.
type IntSource interface {
	Intn(n int) int
}

const (
	promoSuffixMin  = 1000
	promoSuffixSpan = 9000 // suffixes cover 1000..9999
	promoPrefixLen  = 4
)

// PromoCoder builds codes like "VIPE4821". The wrapped source is guarded by a
// mutex, since math/rand sources are not safe for concurrent use.
type PromoCoder struct {
	mu  sync.Mutex
	src IntSource
}

// NewPromoCoder wraps src.
func NewPromoCoder(src IntSource) *PromoCoder {
	return &PromoCoder{src: src}
}

// Code returns the campaign prefix plus a four digit suffix.
func (p *PromoCoder) Code(campaign string) string {
	p.mu.Lock()
	n := promoSuffixMin + p.src.Intn(promoSuffixSpan)
	p.mu.Unlock()
	return fmt.Sprintf("%s%d", PromoPrefix(campaign), n)
}

// PromoPrefix is the first four characters of the upper-cased campaign label
// with spaces removed.
func PromoPrefix(campaign string) string {
	r := []rune(strings.ReplaceAll(strings.ToUpper(campaign), " ", ""))
	if len(r) > promoPrefixLen {
		r = r[:promoPrefixLen]
	}
	return string(r)
}
