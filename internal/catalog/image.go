package catalog

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	// Registers webp decoding for imaging.Decode.
	_ "golang.org/x/image/webp"
)

const (
	thumbMaxWidth  = 200
	thumbMaxHeight = 200

	jpegQuality = 85
)

var (
	// ErrUnsupportedImageType indicates a content type outside the allowed set.
	ErrUnsupportedImageType = errors.New("unsupported image type")
	// ErrImageProcessing indicates a decode or persist failure.
	ErrImageProcessing = errors.New("image processing failed")
)

// Only these content types are accepted, matched exactly after stripping
// media-type parameters.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Ingestor turns uploaded images into bounded thumbnails on disk. Dir is the
// storage directory, PublicPath the URL prefix the files are served under.
type Ingestor struct {
	Dir        string
	PublicPath string
}

func NewIngestor(dir, publicPath string) *Ingestor {
	return &Ingestor{Dir: dir, PublicPath: strings.TrimRight(publicPath, "/")}
}

// Ingest decodes r, downscales it to fit 200x200 preserving aspect ratio
// (never upscaling), and writes it to {Dir}/{productID}.{ext}, replacing any
// previous image for the product. It returns the public URL path.
func (g *Ingestor) Ingest(productID int64, contentType string, r io.Reader) (string, error) {
	ext, err := resolveExtension(contentType)
	if err != nil {
		return "", err
	}

	src, err := imaging.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}

	thumb := imaging.Fit(src, thumbMaxWidth, thumbMaxHeight, imaging.Lanczos)

	name := fmt.Sprintf("%d.%s", productID, ext)
	if err := g.write(name, ext, thumb); err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageProcessing, err)
	}

	return g.PublicPath + "/" + name, nil
}

func resolveExtension(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrUnsupportedImageType
	}
	ext, ok := imageExtensions[strings.ToLower(mt)]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	return ext, nil
}

// write persists atomically: encode to a temp file, then rename over the
// final name so readers never observe a half-written thumbnail.
func (g *Ingestor) write(name, ext string, img image.Image) error {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return err
	}

	tmp := filepath.Join(g.Dir, "."+uuid.NewString()+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := encode(f, ext, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, filepath.Join(g.Dir, name))
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case "jpg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Quality: jpegQuality})
	default:
		return fmt.Errorf("no encoder for extension %q", ext)
	}
}
