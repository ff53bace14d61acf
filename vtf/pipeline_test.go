package vtf

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeLibrary struct {
	session sync.Mutex
	locks   atomic.Int32
	mu      sync.Mutex
	calls   []string
	w, h    int
	format  ImageFormat
	initErr error
	loadErr error
	convErr error
	lastErr string
	handles map[uint32]bool
	next    uint32

	active  int32
	overlap atomic.Bool
}

func newFakeLibrary(w, h int) *fakeLibrary {
	return &fakeLibrary{w: w, h: h, format: FormatDXT1, handles: map[uint32]bool{}}
}

func (f *fakeLibrary) Lock() {
	f.session.Lock()
	f.locks.Add(1)
}

func (f *fakeLibrary) Unlock() { f.session.Unlock() }

func (f *fakeLibrary) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeLibrary) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLibrary) Initialize() error {
	f.record("Initialize")
	if f.initErr != nil {
		f.lastErr = f.initErr.Error()
	}
	return f.initErr
}

func (f *fakeLibrary) CreateImage() (uint32, error) {
	f.record("CreateImage")
	f.next++
	f.handles[f.next] = true
	return f.next, nil
}

func (f *fakeLibrary) BindImage(h uint32) error {
	f.record("BindImage")
	return nil
}

func (f *fakeLibrary) DeleteImage(h uint32) {
	f.record("DeleteImage")
	delete(f.handles, h)
}

func (f *fakeLibrary) Load(data []byte) error {
	f.record("Load")
	if atomic.AddInt32(&f.active, 1) > 1 {
		f.overlap.Store(true)
	}
	defer atomic.AddInt32(&f.active, -1)
	if f.loadErr != nil {
		f.lastErr = f.loadErr.Error()
	}
	return f.loadErr
}

func (f *fakeLibrary) Width() int { return f.w }
func (f *fakeLibrary) Height() int { return f.h }
func (f *fakeLibrary) Format() ImageFormat { return f.format }

func (f *fakeLibrary) Data(frame, face, slice, mip int) ([]byte, error) {
	f.record("Data")
	return make([]byte, ComputeImageSize(f.w, f.h, 1, f.format)), nil
}

func (f *fakeLibrary) Convert(src, dst []byte, w, h int, from, to ImageFormat) error {
	f.record("Convert")
	if f.convErr != nil {
		f.lastErr = f.convErr.Error()
		return f.convErr
	}
	for i := range dst {
		dst[i] = byte(i)
	}
	return nil
}

func (f *fakeLibrary) LastError() string { return f.lastErr }

type countingPool struct {
	gets, puts int
	last       []byte
}

func (p *countingPool) Get(n int) []byte {
	p.gets++
	p.last = make([]byte, n)
	return p.last
}

func (p *countingPool) Put(b []byte) {
	p.puts++
}

func vtfFile(t *testing.T, w, h uint16) []byte {
	t.Helper()
	hdr := testHeader(w, h, 7, 2)
	hdr.HighResImageFormat = FormatDXT1
	return append(marshal(t, hdr), make([]byte, ComputeImageSize(int(w), int(h), 1, FormatDXT1))...)
}

func TestDecodeSuccess(t *testing.T) {
	lib := newFakeLibrary(16, 8)
	pool := &countingPool{}
	var logs bytes.Buffer
	d := NewDecoder(lib, WithPool(pool), WithLogger(log.New(&logs, "", 0)))

	img, err := d.Decode(vtfFile(t, 16, 8))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Width != 16 || img.Height != 8 || img.Stride != 48 || img.BitsPerSample != 8 || img.HasAlpha {
		t.Fatalf("got %dx%d stride %d bits %d", img.Width, img.Height, img.Stride, img.BitsPerSample)
	}
	if len(img.Pix) != 16*8*3 {
		t.Fatalf("pix length %d", len(img.Pix))
	}
	if pool.gets != 1 || pool.puts != 0 {
		t.Fatalf("pool gets=%d puts=%d, want 1/0", pool.gets, pool.puts)
	}
	want := []string{"Initialize", "CreateImage", "BindImage", "Load", "Data", "Convert", "DeleteImage"}
	if got := strings.Join(lib.Calls(), ","); got != strings.Join(want, ",") {
		t.Fatalf("calls = %s", got)
	}
	if len(lib.handles) != 0 {
		t.Fatalf("%d handles leaked", len(lib.handles))
	}
	if !strings.Contains(logs.String(), "vtf 7.2 header=80 16x8 format=DXT1") {
		t.Fatalf("missing diagnostics, log = %q", logs.String())
	}

	if _, err := d.Decode(vtfFile(t, 16, 8)); err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if n := strings.Count(strings.Join(lib.Calls(), ","), "Initialize"); n != 1 {
		t.Fatalf("Initialize called %d times", n)
	}
	if s := d.Stats(); s.Decodes != 2 || s.Failures != 0 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestDecodeMalformedHeaderSkipsLibrary(t *testing.T) {
	lib := newFakeLibrary(16, 16)
	d := NewDecoder(lib)
	_, err := d.Decode([]byte("VTF\x00 too short"))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("got err=%v, want ErrMalformedHeader", err)
	}
	if calls := lib.Calls(); len(calls) != 0 {
		t.Fatalf("library called: %v", calls)
	}
	if s := d.Stats(); s.Failures != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestDecodeLoadError(t *testing.T) {
	lib := newFakeLibrary(16, 16)
	lib.loadErr = errors.New("corrupt mip chain")
	pool := &countingPool{}
	d := NewDecoder(lib, WithPool(pool))

	img, err := d.Decode(vtfFile(t, 16, 16))
	if img != nil {
		t.Fatal("image returned on load failure")
	}
	var le *LoadError
	if !errors.As(err, &le) || !errors.Is(err, ErrLoad) {
		t.Fatalf("got err=%v, want LoadError", err)
	}
	if le.Msg != "corrupt mip chain" {
		t.Fatalf("message %q", le.Msg)
	}
	if pool.gets != 0 {
		t.Fatalf("buffer allocated on load failure (%d gets)", pool.gets)
	}
	for _, c := range lib.Calls() {
		if c == "Data" || c == "Convert" {
			t.Fatalf("%s called after failed load", c)
		}
	}
	if len(lib.handles) != 0 {
		t.Fatal("handle leaked on load failure")
	}
}

func TestDecodeConversionError(t *testing.T) {
	lib := newFakeLibrary(16, 16)
	lib.convErr = errors.New("format mismatch")
	pool := &countingPool{}
	d := NewDecoder(lib, WithPool(pool))

	img, err := d.Decode(vtfFile(t, 16, 16))
	if img != nil {
		t.Fatal("image returned on conversion failure")
	}
	var ce *ConversionError
	if !errors.As(err, &ce) || !errors.Is(err, ErrConversion) {
		t.Fatalf("got err=%v, want ConversionError", err)
	}
	if ce.Msg != "format mismatch" {
		t.Fatalf("message %q", ce.Msg)
	}
	if pool.gets != 1 || pool.puts != 1 {
		t.Fatalf("pool gets=%d puts=%d, want 1/1", pool.gets, pool.puts)
	}
	if len(lib.handles) != 0 {
		t.Fatal("handle leaked on conversion failure")
	}
}

func TestDecodeDimensionMismatch(t *testing.T) {
	lib := newFakeLibrary(32, 32)
	pool := &countingPool{}
	d := NewDecoder(lib, WithPool(pool))
	_, err := d.Decode(vtfFile(t, 16, 16))
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("got err=%v, want ErrConversion", err)
	}
	if pool.gets != 0 {
		t.Fatalf("buffer allocated on mismatch")
	}
}

func TestDecodeInitializeRetried(t *testing.T) {
	lib := newFakeLibrary(4, 4)
	lib.initErr = errors.New("no memory")
	d := NewDecoder(lib)
	if _, err := d.Decode(vtfFile(t, 4, 4)); !errors.Is(err, ErrLoad) {
		t.Fatalf("got err=%v, want ErrLoad", err)
	}
	lib.initErr = nil
	if _, err := d.Decode(vtfFile(t, 4, 4)); err != nil {
		t.Fatalf("decode after init recovered: %v", err)
	}
}

func TestDecodeSerialized(t *testing.T) {
	lib := newFakeLibrary(8, 8)
	d := NewDecoder(lib)
	data := vtfFile(t, 8, 8)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Decode(data); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent decode: %v", err)
	}
	if lib.overlap.Load() {
		t.Fatal("library used by two decodes at once")
	}
	if s := d.Stats(); s.Decodes != 16 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestDecodersShareLibraryLock(t *testing.T) {
	lib := newFakeLibrary(8, 8)
	decoders := []*Decoder{NewDecoder(lib), NewDecoder(lib)}
	data := vtfFile(t, 8, 8)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(d *Decoder) {
			defer wg.Done()
			if _, err := d.Decode(data); err != nil {
				errs <- err
			}
		}(decoders[i%2])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent decode: %v", err)
	}
	if lib.overlap.Load() {
		t.Fatal("two decoders used the library at once")
	}
	if n := lib.locks.Load(); n != 32 {
		t.Fatalf("library locked %d times, want 32", n)
	}
	if len(lib.handles) != 0 {
		t.Fatalf("%d handles leaked", len(lib.handles))
	}
}

func TestDecodeCacheHit(t *testing.T) {
	lib := newFakeLibrary(8, 8)
	cache, err := NewCache(CacheZstd, 4)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	defer cache.Close()
	d := NewDecoder(lib, WithCache(cache))
	data := vtfFile(t, 8, 8)

	first, err := d.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	loads := strings.Count(strings.Join(lib.Calls(), ","), "Load")
	second, err := d.Decode(data)
	if err != nil {
		t.Fatalf("cached decode: %v", err)
	}
	if n := strings.Count(strings.Join(lib.Calls(), ","), "Load"); n != loads {
		t.Fatalf("library loaded again on cache hit")
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("cached pixels differ")
	}
	if s := d.Stats(); s.CacheHits != 1 || s.Decodes != 1 {
		t.Fatalf("stats = %+v", s)
	}
}
