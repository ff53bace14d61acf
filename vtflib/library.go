// Package vtflib is a handle-based VTF imaging library. Images are created
// as numbered handles and one of them is bound at a time; every query and
// load acts on the bound image. Failures are reported as errors and the
// message is also kept for LastError.
//
// Individual calls are not synchronized. Callers sharing a Library hold
// Lock from CreateImage to DeleteImage; vtf.Decoder does this.
package vtflib

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bsoldiers/vtview/vtf"
)

var (
	errNotInitialized = errors.New("library not initialized")
	errNoBoundImage   = errors.New("no image bound")
	errNotLoaded      = errors.New("bound image has no data")
)

type imageState struct {
	header  *vtf.Header
	data    []byte
	highRes int
	lowRes  int // -1 when the file has no thumbnail
}

// Library holds created images and the currently bound one.
type Library struct {
	session     sync.Mutex
	initialized bool
	next        uint32
	images      map[uint32]*imageState
	bound       uint32
	lastErr     string
}

// New returns an uninitialized library.
func New() *Library {
	return &Library{}
}

var defaultLibrary = New()

// Default returns the process-wide library.
func Default() *Library { return defaultLibrary }

func (l *Library) fail(err error) error {
	l.lastErr = err.Error()
	return err
}

// Initialize prepares the library. Calling it again is a no-op.
func (l *Library) Initialize() error {
	if l.initialized {
		return nil
	}
	l.images = make(map[uint32]*imageState)
	l.next = 1
	l.initialized = true
	l.lastErr = ""
	return nil
}

// Lock starts a session. Only one session runs at a time.
func (l *Library) Lock() { l.session.Lock() }

// Unlock ends the session started by Lock.
func (l *Library) Unlock() { l.session.Unlock() }

// Shutdown drops all images and returns the library to its initial state.
// It does not touch the session lock.
func (l *Library) Shutdown() {
	l.initialized = false
	l.next = 0
	l.images = nil
	l.bound = 0
	l.lastErr = ""
}

// CreateImage allocates a new empty image handle.
func (l *Library) CreateImage() (uint32, error) {
	if !l.initialized {
		return 0, l.fail(errNotInitialized)
	}
	h := l.next
	l.next++
	l.images[h] = &imageState{lowRes: -1}
	return h, nil
}

// BindImage makes handle the target of later calls.
func (l *Library) BindImage(handle uint32) error {
	if !l.initialized {
		return l.fail(errNotInitialized)
	}
	if _, ok := l.images[handle]; !ok {
		return l.fail(fmt.Errorf("invalid image handle %d", handle))
	}
	l.bound = handle
	return nil
}

// DeleteImage frees handle, unbinding it if it is bound.
func (l *Library) DeleteImage(handle uint32) {
	if !l.initialized {
		return
	}
	delete(l.images, handle)
	if l.bound == handle {
		l.bound = 0
	}
}

// Images returns the number of live handles.
func (l *Library) Images() int { return len(l.images) }

func (l *Library) current() (*imageState, error) {
	if !l.initialized {
		return nil, l.fail(errNotInitialized)
	}
	img, ok := l.images[l.bound]
	if !ok {
		return nil, l.fail(errNoBoundImage)
	}
	return img, nil
}

// Load parses a complete VTF file into the bound image. The data is kept
// by reference and must not be modified while the image is loaded.
func (l *Library) Load(data []byte) error {
	img, err := l.current()
	if err != nil {
		return err
	}
	h, err := vtf.ParseHeader(data)
	if err != nil {
		return l.fail(err)
	}
	lay, err := locate(data, h)
	if err != nil {
		return l.fail(err)
	}
	*img = imageState{header: h, data: data, highRes: lay.highRes, lowRes: lay.lowRes}
	return nil
}

func (l *Library) loaded() *imageState {
	img, err := l.current()
	if err != nil || img.header == nil {
		return nil
	}
	return img
}

// Header returns the header of the bound image, or nil.
func (l *Library) Header() *vtf.Header {
	if img := l.loaded(); img != nil {
		return img.header
	}
	return nil
}

// Width of the largest mip of the bound image, 0 if nothing is loaded.
func (l *Library) Width() int {
	if img := l.loaded(); img != nil {
		return int(img.header.Width)
	}
	return 0
}

// Height of the largest mip of the bound image, 0 if nothing is loaded.
func (l *Library) Height() int {
	if img := l.loaded(); img != nil {
		return int(img.header.Height)
	}
	return 0
}

// Format of the high resolution image, FormatNone if nothing is loaded.
func (l *Library) Format() vtf.ImageFormat {
	if img := l.loaded(); img != nil {
		return img.header.HighResImageFormat
	}
	return vtf.FormatNone
}

// Data returns the bytes of one high resolution image slice.
func (l *Library) Data(frame, face, slice, mip int) ([]byte, error) {
	img, err := l.current()
	if err != nil {
		return nil, err
	}
	if img.header == nil {
		return nil, l.fail(errNotLoaded)
	}
	off, n, err := imageOffset(img.header, img.highRes, frame, face, slice, mip)
	if err != nil {
		return nil, l.fail(err)
	}
	if off+n > len(img.data) {
		return nil, l.fail(fmt.Errorf("image data truncated: need %d bytes at %d, file is %d", n, off, len(img.data)))
	}
	return img.data[off : off+n], nil
}

// LowResData returns the thumbnail bytes and its format.
func (l *Library) LowResData() ([]byte, vtf.ImageFormat, error) {
	img, err := l.current()
	if err != nil {
		return nil, vtf.FormatNone, err
	}
	if img.header == nil {
		return nil, vtf.FormatNone, l.fail(errNotLoaded)
	}
	if img.lowRes < 0 {
		return nil, vtf.FormatNone, l.fail(errors.New("file has no low resolution image"))
	}
	h := img.header
	n := vtf.ComputeImageSize(int(h.LowResImageWidth), int(h.LowResImageHeight), 1, h.LowResImageFormat)
	if img.lowRes+n > len(img.data) {
		return nil, vtf.FormatNone, l.fail(errors.New("low resolution image truncated"))
	}
	return img.data[img.lowRes : img.lowRes+n], h.LowResImageFormat, nil
}

// Convert converts a w x h image from one format to another. Only
// uncompressed formats are accepted as targets.
func (l *Library) Convert(src, dst []byte, w, h int, from, to vtf.ImageFormat) error {
	if !l.initialized {
		return l.fail(errNotInitialized)
	}
	if w <= 0 || h <= 0 {
		return l.fail(fmt.Errorf("invalid dimensions %dx%d", w, h))
	}
	rgba, err := toRGBA(src, w, h, from)
	if err != nil {
		return l.fail(err)
	}
	if err := fromRGBA(rgba, dst, w, h, to); err != nil {
		return l.fail(err)
	}
	return nil
}

// LastError returns the message of the most recent failure.
func (l *Library) LastError() string { return l.lastErr }
