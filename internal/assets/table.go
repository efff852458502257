// Package assets holds the fixed, indexed set of hand-state images.
//
// Index 0 is the "no hand" image and index i > 0 shows a hand with i-1
// extended fingers. A Table is loaded once, all or nothing, and is read-only
// afterwards, so it can be shared between goroutines without locking.
package assets

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DefaultSize is the edge length every image is normalized to.
const DefaultSize = 1024

// DefaultNames are the image files of the standard seven-entry table.
var DefaultNames = []string{
	"nohand.png",
	"hand0.png",
	"hand1.png",
	"hand2.png",
	"hand3.png",
	"hand4.png",
	"hand5.png",
}

var (
	// ErrMissingAsset matches any MissingAssetError.
	ErrMissingAsset = errors.New("missing asset")
	// ErrIncompleteTable is returned when the names cannot form a usable table.
	ErrIncompleteTable = errors.New("incomplete asset table")
)

// MissingAssetError reports an image that could not be decoded.
type MissingAssetError struct {
	Name string
	Err  error
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("missing asset %q: %v", e.Name, e.Err)
}

func (e *MissingAssetError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMissingAsset.
func (e *MissingAssetError) Is(target error) bool { return target == ErrMissingAsset }

// Loader decodes a named image.
type Loader interface {
	Load(name string) (gocv.Mat, error)
}

// Image is an entry of a Table.
type Image struct {
	Index int
	Name  string
	mat   gocv.Mat
}

// Mat returns the image data. The Mat is owned by the table: callers must not
// modify or close it.
func (i *Image) Mat() gocv.Mat {
	return i.mat
}

// Table is an immutable, ordered set of square images.
type Table struct {
	images []*Image
	size   int
}

// Load decodes every name with l and normalizes the results to size x size.
// If any image fails to load, the images decoded so far are released and no
// table is returned.
func Load(l Loader, names []string, size int) (*Table, error) {
	if len(names) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 images, got %d", ErrIncompleteTable, len(names))
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: invalid image size %d", ErrIncompleteTable, size)
	}

	t := &Table{
		images: make([]*Image, 0, len(names)),
		size:   size,
	}

	for i, name := range names {
		mat, err := l.Load(name)
		if err == nil && mat.Empty() {
			mat.Close()
			err = errors.New("decoded image is empty")
		}
		if err != nil {
			t.Close()
			return nil, &MissingAssetError{Name: name, Err: err}
		}

		t.images = append(t.images, &Image{
			Index: i,
			Name:  name,
			mat:   normalize(mat, size),
		})
	}

	return t, nil
}

// normalize converts src to a size x size BGRA square, taking ownership of src.
func normalize(src gocv.Mat, size int) gocv.Mat {
	switch src.Channels() {
	case 1:
		src = convert(src, gocv.ColorGrayToBGRA)
	case 3:
		src = convert(src, gocv.ColorBGRToBGRA)
	}

	if src.Rows() == size && src.Cols() == size {
		return src
	}

	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Point{X: size, Y: size}, 0, 0, gocv.InterpolationArea)
	src.Close()
	return dst
}

func convert(src gocv.Mat, code gocv.ColorConversionCode) gocv.Mat {
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, code)
	src.Close()
	return dst
}

// Get returns the image at index. It panics if index is out of range; indices
// produced by tracking.Resolve are always in range.
func (t *Table) Get(index int) *Image {
	if index < 0 || index >= len(t.images) {
		panic(fmt.Sprintf("assets: index %d out of range [0, %d)", index, len(t.images)))
	}
	return t.images[index]
}

// Len returns the number of images in the table.
func (t *Table) Len() int {
	return len(t.images)
}

// MaxIndex returns the largest valid index.
func (t *Table) MaxIndex() int {
	return len(t.images) - 1
}

// Size returns the edge length of every image.
func (t *Table) Size() int {
	return t.size
}

// Close releases the image data. The table must not be used afterwards.
func (t *Table) Close() error {
	for _, img := range t.images {
		img.mat.Close()
	}
	t.images = nil
	return nil
}
