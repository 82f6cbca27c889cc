// image.go bridges Frame and Go's image.Image.

package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// FromImage copies img into a new Frame. 8-bit grayscale and 16-bit
// grayscale images keep a single channel; 16-bit color images become
// four-channel u16 frames; everything else is rendered into 8-bit RGBA.
func FromImage(img image.Image) (*Frame, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrInvalidGeometry{
			Geometry: Geometry{Width: b.Dx(), Height: b.Dy()},
			Reason:   "empty image",
		}
	}
	w, h := b.Dx(), b.Dy()

	switch img := img.(type) {
	case *image.Gray:
		f := MustNew(Geometry{Width: w, Height: h, Channels: 1, Depth: DepthU8})
		for y := 0; y < h; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			copy(f.U8[y*w:(y+1)*w], img.Pix[off:off+w])
		}
		return f, nil
	case *image.Gray16:
		f := MustNew(Geometry{Width: w, Height: h, Channels: 1, Depth: DepthU16})
		for y := 0; y < h; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			row := f.U16[y*w : (y+1)*w]
			for x := range row {
				row[x] = uint16(img.Pix[off+2*x])<<8 | uint16(img.Pix[off+2*x+1])
			}
		}
		return f, nil
	case *image.RGBA64, *image.NRGBA64:
		rgba := image.NewRGBA64(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		f := MustNew(Geometry{Width: w, Height: h, Channels: 4, Depth: DepthU16})
		for i := range f.U16 {
			f.U16[i] = uint16(rgba.Pix[2*i])<<8 | uint16(rgba.Pix[2*i+1])
		}
		return f, nil
	default:
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		f := MustNew(Geometry{Width: w, Height: h, Channels: 4, Depth: DepthU8})
		copy(f.U8, rgba.Pix)
		return f, nil
	}
}

// ToImage renders the frame as an image.Image. Single-channel frames become
// grayscale, three- and four-channel frames become RGBA (the missing alpha
// is opaque). f32 samples are clamped into [0, 1] and stored with 16 bits.
func (f *Frame) ToImage() (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	switch f.Channels {
	case 1, 3, 4:
	default:
		return nil, ErrInvalidGeometry{
			Geometry: f.Geometry,
			Reason:   fmt.Sprintf("cannot represent %d channels as an image", f.Channels),
		}
	}

	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Depth == DepthU8 {
		if f.Channels == 1 {
			img := image.NewGray(rect)
			copy(img.Pix, f.U8)
			return img, nil
		}
		img := image.NewRGBA(rect)
		for p := 0; p < f.Width*f.Height; p++ {
			src := f.U8[p*f.Channels : (p+1)*f.Channels]
			dst := img.Pix[p*4 : p*4+4]
			copy(dst, src)
			if f.Channels == 3 {
				dst[3] = math.MaxUint8
			}
		}
		return img, nil
	}

	sample16 := func(i int) uint16 {
		if f.Depth == DepthU16 {
			return f.U16[i]
		}
		v := math.Max(0, math.Min(1, float64(f.F32[i])))
		return saturate[uint16](v * math.MaxUint16)
	}
	if f.Channels == 1 {
		img := image.NewGray16(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: sample16(y*f.Width + x)})
			}
		}
		return img, nil
	}
	img := image.NewRGBA64(rect)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			base := (y*f.Width + x) * f.Channels
			c := color.RGBA64{
				R: sample16(base),
				G: sample16(base + 1),
				B: sample16(base + 2),
				A: math.MaxUint16,
			}
			if f.Channels == 4 {
				c.A = sample16(base + 3)
			}
			img.SetRGBA64(x, y, c)
		}
	}
	return img, nil
}
