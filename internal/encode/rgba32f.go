package encode

import "image"

// Rgba32FImage is a linear float32 RGBA image, analogous to the source
// format's Rgba32FImage: full-precision position data that the 8-bit
// images would quantize away. The standard library has no float image
// type, so this is a minimal stand-in sized the same way image.RGBA is.
type Rgba32FImage struct {
	Pix    []float32 // row-major, 4 floats per pixel
	Stride int
	Rect   image.Rectangle
}

// NewRgba32FImage allocates a w x h float32 RGBA image, zero-filled.
func NewRgba32FImage(w, h int) *Rgba32FImage {
	return &Rgba32FImage{
		Pix:    make([]float32, 4*w*h),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// Set writes the RGBA float32 quadruple at (x,y).
func (f *Rgba32FImage) Set(x, y int, rgba [4]float32) {
	i := y*f.Stride + x*4
	copy(f.Pix[i:i+4], rgba[:])
}

// At returns the RGBA float32 quadruple at (x,y).
func (f *Rgba32FImage) At(x, y int) [4]float32 {
	i := y*f.Stride + x*4
	return [4]float32{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}
