package notify

import "sync"

// Progress is a mutex-guarded cell holding either no measurement or a
// completion fraction in [0, 1]. The in-flight downloader is the only writer;
// an external renderer polls it. The downloader never clears the cell, the
// orchestrating caller does that at the edges of each flow.
type Progress struct {
	// mu protects concurrent access to the cell.
	mu sync.Mutex
	// fraction is the last written completion fraction.
	fraction float64
	// set reports whether a measurement has been written.
	set bool
}

// NewProgress returns an unset progress cell.
func NewProgress() *Progress {
	return &Progress{}
}

// Set overwrites the cell with the provided completion fraction.
func (p *Progress) Set(fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fraction = fraction
	p.set = true
}

// Get returns the current fraction and whether a measurement is present.
func (p *Progress) Get() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.fraction, p.set
}

// Clear resets the cell to the "no measurement" state.
func (p *Progress) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fraction = 0
	p.set = false
}
