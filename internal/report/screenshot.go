package report

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"regexp"

	"github.com/nfnt/resize"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotName turns a check name into a file name
func ScreenshotName(check string) string {
	name := unsafeName.ReplaceAllString(check, "_")
	if name == "" || name == "." || name == ".." {
		name = "screenshot"
	}
	return name + ".png"
}

// SaveScreenshot decodes a PNG capture, shrinks it to maxWidth when wider
// (0 keeps the original size) and writes it to dir. It returns the written
// path and its size.
func SaveScreenshot(dir, check string, data []byte, maxWidth uint) (string, int64, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("decode screenshot: %w", err)
	}

	// Keep the aspect ratio
	bounds := img.Bounds()
	if maxWidth > 0 && uint(bounds.Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create screenshot directory: %w", err)
	}
	path := filepath.Join(dir, ScreenshotName(check))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", 0, fmt.Errorf("encode screenshot: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	return path, info.Size(), nil
}
