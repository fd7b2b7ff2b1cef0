package prompt

import "scene-prompt-studio/internal/attachment"

// StyleImage is an optional encoded reference image. The zero value means
// no image is attached.
type StyleImage struct {
	image   attachment.EncodedImage
	present bool
}

func NoStyleImage() StyleImage {
	return StyleImage{}
}

func WithStyleImage(img attachment.EncodedImage) StyleImage {
	return StyleImage{image: img, present: true}
}

func (s StyleImage) Get() (attachment.EncodedImage, bool) {
	return s.image, s.present
}
