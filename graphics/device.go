// Package graphics defines the boundary between the text renderer and the
// GPU resources that display its output.
package graphics

import (
	"errors"
	"fmt"
	"sync"
)

// Format 描述纹理像素格式。
type Format int

const (
	// FormatBGRA 是 32 位 BGRA，alpha 预乘，每像素 4 字节。
	FormatBGRA Format = iota
)

func (f Format) String() string {
	switch f {
	case FormatBGRA:
		return "bgra"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// BytesPerPixel returns the size of one pixel in bytes.
func (f Format) BytesPerPixel() int { return 4 }

// ErrTextureTooLarge is returned when a texture exceeds the device limit.
var ErrTextureTooLarge = errors.New("graphics: texture too large")

// Texture is an opaque handle to a device texture.
type Texture interface {
	ID() int
	Width() int
	Height() int
}

// Device creates and destroys textures. Every CreateTexture and
// DestroyTexture call must happen between Enter and Leave, which hold the
// graphics-context lock.
type Device interface {
	Enter()
	Leave()
	CreateTexture(width, height int, format Format, pix []byte) (Texture, error)
	DestroyTexture(tex Texture)
}

// MemoryTexture is a texture held in process memory.
type MemoryTexture struct {
	id     int
	width  int
	height int
	format Format
	pix    []byte
}

func (t *MemoryTexture) ID() int        { return t.id }
func (t *MemoryTexture) Width() int     { return t.width }
func (t *MemoryTexture) Height() int    { return t.height }
func (t *MemoryTexture) Format() Format { return t.format }

// Pix returns the uploaded pixels. The slice is owned by the texture.
func (t *MemoryTexture) Pix() []byte { return t.pix }

// Memory is a Device that keeps textures in memory. It backs the CLI and the
// watch UI, and records how it was used.
type Memory struct {
	// MaxSize 限制纹理宽高，0 表示不限制。
	MaxSize int
	// Fail 非空时 CreateTexture 直接返回该错误。
	Fail error

	mu        sync.Mutex
	next      int
	live      map[int]*MemoryTexture
	created   int
	destroyed int
	entered   bool
}

// NewMemory creates an empty memory device.
func NewMemory(maxSize int) *Memory {
	return &Memory{MaxSize: maxSize, live: map[int]*MemoryTexture{}}
}

// Enter acquires the graphics-context lock.
func (m *Memory) Enter() {
	m.mu.Lock()
	m.entered = true
}

// Leave releases the graphics-context lock.
func (m *Memory) Leave() {
	m.entered = false
	m.mu.Unlock()
}

// CreateTexture copies pix into a new texture.
func (m *Memory) CreateTexture(width, height int, format Format, pix []byte) (Texture, error) {
	if !m.entered {
		return nil, errors.New("graphics: CreateTexture called outside Enter/Leave")
	}
	if m.Fail != nil {
		return nil, m.Fail
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("graphics: invalid texture size %dx%d", width, height)
	}
	if m.MaxSize > 0 && (width > m.MaxSize || height > m.MaxSize) {
		return nil, fmt.Errorf("%w: %dx%d > %d", ErrTextureTooLarge, width, height, m.MaxSize)
	}
	if need := width * height * format.BytesPerPixel(); len(pix) < need {
		return nil, fmt.Errorf("graphics: pixel buffer has %d bytes, need %d", len(pix), need)
	}
	if m.live == nil {
		m.live = map[int]*MemoryTexture{}
	}
	m.next++
	tex := &MemoryTexture{
		id:     m.next,
		width:  width,
		height: height,
		format: format,
		pix:    append([]byte(nil), pix...),
	}
	m.live[tex.id] = tex
	m.created++
	return tex, nil
}

// DestroyTexture releases tex. Unknown or nil handles are ignored, and so
// is a call made outside Enter/Leave.
func (m *Memory) DestroyTexture(tex Texture) {
	if tex == nil || !m.entered {
		return
	}
	if _, ok := m.live[tex.ID()]; !ok {
		return
	}
	delete(m.live, tex.ID())
	m.destroyed++
}

// Stats reports texture counters: live, created and destroyed.
func (m *Memory) Stats() (live, created, destroyed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live), m.created, m.destroyed
}

// Lookup returns the live texture with the given id.
func (m *Memory) Lookup(id int) (*MemoryTexture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tex, ok := m.live[id]
	return tex, ok
}
