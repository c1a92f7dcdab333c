package raster

// Bitmap is a binarized raster: true marks foreground (trace ink).
// Both binarization strategies produce this contract.
type Bitmap struct {
	W, H int
	bits []bool
}

// NewBitmap allocates an all-background bitmap.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, bits: make([]bool, w*h)}
}

// At reports whether (x, y) is foreground. Out-of-bounds is background.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return false
	}
	return b.bits[y*b.W+x]
}

// Set marks (x, y) as foreground or background.
func (b *Bitmap) Set(x, y int, v bool) {
	if x < 0 || x >= b.W || y < 0 || y >= b.H {
		return
	}
	b.bits[y*b.W+x] = v
}

// ForegroundCount returns the number of foreground pixels.
func (b *Bitmap) ForegroundCount() int {
	n := 0
	for _, v := range b.bits {
		if v {
			n++
		}
	}
	return n
}

// Empty reports whether the bitmap has no foreground at all.
func (b *Bitmap) Empty() bool { return b.ForegroundCount() == 0 }
