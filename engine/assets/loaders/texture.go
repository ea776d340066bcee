package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type TextureLoader struct{}

// Load decodes an image into row-major pixels. Gray images keep one channel
// so the registry can reject them; opaque YCbCr images come out as RGB and
// everything else as non-premultiplied RGBA.
func (tl *TextureLoader) Load(path string) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening texture %s", path)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding texture %s", path)
	}
	if img.Bounds().Empty() {
		return nil, errors.Newf("texture %s: empty %s image", path, format)
	}

	data := DecodePixels(img)
	data.Name = filepath.Base(path)
	return &metadata.Resource{
		Name:     data.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

// DecodePixels flattens img into a TextureData without a name.
func DecodePixels(img image.Image) *metadata.TextureData {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := &metadata.TextureData{
		Width:  uint32(width),
		Height: uint32(height),
	}

	switch src := img.(type) {
	case *image.Gray:
		data.Channels = 1
		data.Pixels = make([]byte, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, y):]
			data.Pixels = append(data.Pixels, row[:width]...)
		}
	case *image.YCbCr:
		rgba := toNRGBA(src)
		data.Channels = 3
		data.Pixels = make([]byte, 0, width*height*3)
		for i := 0; i < len(rgba.Pix); i += 4 {
			data.Pixels = append(data.Pixels, rgba.Pix[i:i+3]...)
		}
	default:
		data.Channels = 4
		data.Pixels = toNRGBA(img).Pix
	}
	return data
}

func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == bounds.Dx()*4 && bounds.Min == (image.Point{}) {
		return nrgba
	}
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
