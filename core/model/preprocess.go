package model

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/verdant-labs/cropsight/core/errors"
)

// DefaultImageSize matches the training input resolution.
const DefaultImageSize = 224

// ImageNet channel statistics used during training; preprocessing must
// match them exactly or scores drift.
var (
	normalizeMean = [3]float32{0.485, 0.456, 0.406}
	normalizeStd  = [3]float32{0.229, 0.224, 0.225}
)

// ImagePreprocessor decodes a JPEG or PNG from disk, resizes it to
// Size x Size and emits a normalized CHW tensor.
type ImagePreprocessor struct {
	Size int
}

func (p ImagePreprocessor) Preprocess(path string) (Tensor, error) {
	size := p.Size
	if size <= 0 {
		size = DefaultImageSize
	}
	// #nosec G304 -- image path is explicit request input.
	file, err := os.Open(path)
	if err != nil {
		return Tensor{}, errors.Wrap(fmt.Errorf("open image: %w", err), errors.CategoryUnreadableImage, "image_open_failed", false)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return Tensor{}, errors.Wrap(fmt.Errorf("decode image %s: %w", path, err), errors.CategoryUnreadableImage, "image_decode_failed", false)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return Tensor{}, errors.Wrap(fmt.Errorf("image %s has empty bounds", path), errors.CategoryUnreadableImage, "image_empty", false)
	}

	data := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		srcY := bounds.Min.Y + y*height/size
		for x := 0; x < size; x++ {
			srcX := bounds.Min.X + x*width/size
			r, g, b, _ := img.At(srcX, srcY).RGBA()
			idx := y*size + x
			data[idx] = normalize(r, 0)
			data[plane+idx] = normalize(g, 1)
			data[2*plane+idx] = normalize(b, 2)
		}
	}
	return Tensor{Data: data, Shape: []int{3, size, size}}, nil
}

func normalize(channel uint32, index int) float32 {
	// RGBA returns 16-bit channels; scale to [0,1] before normalization.
	v := float32(channel) / 65535.0
	return (v - normalizeMean[index]) / normalizeStd[index]
}
