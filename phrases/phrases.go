// Package phrases holds the scripted in-persona lines used when a backend
// call cannot produce a real reply.
package phrases

import (
	"math/rand/v2"
	"slices"
	"sync"
)

type Pool struct {
	lines []string
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewPool returns a pool that picks with the global random source.
func NewPool(lines ...string) *Pool {
	return &Pool{lines: slices.Clone(lines)}
}

// NewSeededPool returns a pool with a deterministic selector.
func NewSeededPool(seed uint64, lines ...string) *Pool {
	return &Pool{lines: slices.Clone(lines), rng: rand.New(rand.NewPCG(seed, seed))}
}

// Pick returns a pseudorandom line, or "" for an empty pool.
func (p *Pool) Pick() string {
	if len(p.lines) == 0 {
		return ""
	}
	if p.rng == nil {
		return p.lines[rand.IntN(len(p.lines))]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lines[p.rng.IntN(len(p.lines))]
}

func (p *Pool) Contains(line string) bool {
	return slices.Contains(p.lines, line)
}

func (p *Pool) Lines() []string {
	return slices.Clone(p.lines)
}

func (p *Pool) Len() int {
	return len(p.lines)
}

var imageFailureLines = []string{
	"Duh, sori banget ya, fotonya tadi mental pas mau gue kirim. Nanti gue coba lagi deh!",
	"Aduh, kameranya lagi ngambek nih. Fotonya gagal kekirim, maaf ya bestie.",
	"Yah, fotonya nggak mau keluar. Sinyal gue lagi jelek kayaknya, coba minta lagi ya.",
	"Sori sori, tadi udah gue jepret tapi fotonya error. Ntar gue kirim yang baru!",
	"Hadeh, fotonya ketahan sistem nih. Kita ngobrol dulu aja ya, ntar gue coba lagi.",
}

var quotaFailureLines = []string{
	"Bentar ya, gue lagi capek banget nih kebanyakan ngobrol. Istirahat bentar terus lanjut lagi!",
	"Aduh, otak gue lagi nge-lag nih. Kasih gue waktu sebentar ya, abis itu kita lanjut.",
	"Sori bestie, kuota gue lagi abis buat hari ini. Nanti kita sambung lagi ya!",
	"Waduh, gue lagi kewalahan nih. Tunggu sebentar terus chat gue lagi ya.",
}

// ImageFailure is the pool used when a requested photo cannot be generated.
// The first line is the one the persona instructions tell the model to recognize.
func ImageFailure() *Pool {
	return NewPool(imageFailureLines...)
}

// QuotaFailure is the pool used when the text backend is out of quota.
func QuotaFailure() *Pool {
	return NewPool(quotaFailureLines...)
}
