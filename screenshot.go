package canopy

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where screenshots go when no directory is set.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a labeled capture of the next rendered frame. Under Run
// the frame is written as a PNG to the screenshot directory with a
// timestamped name. Safe to call from Update or event handlers.
func (p *Pipeline) Screenshot(label string) {
	p.screenshots = append(p.screenshots, label)
}

// SetScreenshotDir sets the directory screenshots are written to. An empty
// string restores DefaultScreenshotDir.
func (p *Pipeline) SetScreenshotDir(dir string) {
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	p.screenshotDir = dir
}

// PendingScreenshots returns the number of queued screenshot labels.
func (p *Pipeline) PendingScreenshots() int {
	return len(p.screenshots)
}

// flushScreenshots captures screen once for every queued label. Failures
// are logged; the queue is always cleared.
func (p *Pipeline) flushScreenshots(screen *ebiten.Image) {
	if len(p.screenshots) == 0 {
		return
	}
	defer func() { p.screenshots = p.screenshots[:0] }()

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	paths, err := writeScreenshots(p.screenshotDir, time.Now(), p.screenshots, img)
	if err != nil {
		p.log.Error("screenshot failed", slog.Any("error", err))
	}
	for _, path := range paths {
		p.log.Info("screenshot saved", slog.String("path", path))
	}
}

// writeScreenshots encodes img once per label and returns the written paths.
func writeScreenshots(dir string, now time.Time, labels []string, img image.Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("screenshot: mkdir %s: %w", dir, err)
	}
	stamp := now.Format("20060102_150405")
	var paths []string
	for _, label := range labels {
		path := filepath.Join(dir, stamp+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing everything
// else with '_'. Empty labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
