package canopy

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// maxParallelLoads bounds the number of images LoadAll decodes at once.
const maxParallelLoads = 4

// ImageObject draws an image decoded from a file system. Decoding may happen
// off the update goroutine; the object draws nothing until the decoded image
// has been uploaded, which happens on the first Update after loading.
type ImageObject struct {
	GameObject

	fsys fs.FS
	path string

	mu      sync.Mutex
	done    chan struct{} // closed when the current load attempt ends
	ready   atomic.Bool
	decoded image.Image
	err     error
	img     *ebiten.Image
}

// NewImageObject creates an image object for path in fsys. Nothing is read
// until Load, LoadAsync or LoadAll is called.
func NewImageObject(name string, fsys fs.FS, path string) *ImageObject {
	o := &ImageObject{fsys: fsys, path: path}
	objectDefaults(&o.GameObject, name)
	return o
}

// Path returns the image path.
func (o *ImageObject) Path() string {
	return o.path
}

// Load reads and decodes the image. PNG, BMP and WebP are supported.
// It is safe to call from any goroutine. The first call decodes; later
// calls wait for that load and return its result. A load that failed
// because its context was cancelled is not kept, so the next Load retries.
func (o *ImageObject) Load(ctx context.Context) error {
	for {
		o.mu.Lock()
		if o.done == nil {
			done := make(chan struct{})
			o.done = done
			o.mu.Unlock()
			return o.run(ctx, done)
		}
		done := o.done
		o.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		o.mu.Lock()
		err, finished := o.err, o.done == done
		o.mu.Unlock()
		if finished {
			return err
		}
	}
}

// run performs one load attempt and publishes its result.
func (o *ImageObject) run(ctx context.Context, done chan struct{}) error {
	img, err := o.decode(ctx)
	o.mu.Lock()
	if err != nil && ctx.Err() != nil {
		o.done = nil
	} else {
		o.decoded, o.err = img, err
		o.ready.Store(true)
	}
	o.mu.Unlock()
	close(done)
	return err
}

func (o *ImageObject) decode(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := o.fsys.Open(o.path)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", o.path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", o.path, err)
	}
	return img, nil
}

// LoadAsync starts Load on a new goroutine. The returned channel receives
// the result and is then closed.
func (o *ImageObject) LoadAsync(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- o.Load(ctx)
	}()
	return ch
}

// Init implements Initializer: an object that was never loaded starts
// loading in the background when its pipeline initializes.
func (o *ImageObject) Init() error {
	o.mu.Lock()
	idle := o.done == nil
	o.mu.Unlock()
	if idle {
		o.LoadAsync(context.Background())
	}
	return nil
}

// Loaded reports whether loading has finished, successfully or not.
func (o *ImageObject) Loaded() bool {
	return o.ready.Load()
}

// Err returns the load error, if any. It is only meaningful once Loaded
// reports true.
func (o *ImageObject) Err() error {
	if !o.ready.Load() {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Image returns the uploaded image, or nil before the first Update after
// a successful load.
func (o *ImageObject) Image() *ebiten.Image {
	return o.img
}

// Update uploads a freshly decoded image, then calls OnUpdate.
func (o *ImageObject) Update(dt float64) {
	if o.img == nil && o.ready.Load() && o.decoded != nil {
		o.img = ebiten.NewImageFromImage(o.decoded)
		o.decoded = nil
		o.SetShape(&ImageShape{Image: o.img})
	}
	o.GameObject.Update(dt)
}

// LoadAll decodes every object in parallel and returns the first error.
// Objects already loading are waited for. Remaining loads are cancelled
// once one fails.
func LoadAll(ctx context.Context, objs ...*ImageObject) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for _, o := range objs {
		g.Go(func() error {
			return o.Load(ctx)
		})
	}
	return g.Wait()
}
