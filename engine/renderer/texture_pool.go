package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultMaxIdleFrames is how many frames a released texture may sit unused before it is freed.
const DefaultMaxIdleFrames = 3

// TextureAllocator creates and frees the resources backing pooled textures.
type TextureAllocator[T any] interface {
	// Allocate creates a resource for desc.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - T: the new resource
	//   - error: an error if the device could not allocate it
	Allocate(desc render_graph.TextureDesc) (T, error)

	// Free destroys a resource.
	//
	// Parameters:
	//   - resource: the resource to destroy
	Free(resource T)
}

// PoolStats counts pool activity since the pool was created.
type PoolStats struct {
	// Allocations is the number of resources created by the allocator.
	Allocations int
	// Reuses is the number of acquisitions served from idle resources.
	Reuses int
	// Evictions is the number of idle resources freed at EndFrame.
	Evictions int
	// Idle is the number of resources currently waiting for reuse.
	Idle int
}

// TexturePool recycles transient textures by size and format. Textures released during a frame are
// immediately available to later acquisitions, which is how passes with disjoint lifetimes share memory.
type TexturePool[T any] interface {
	// Acquire returns an idle resource matching desc's size and format, or allocates one.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - T: the resource
	//   - error: an error wrapping render_graph.ErrAllocationFailed if allocation fails
	Acquire(desc render_graph.TextureDesc) (T, error)

	// Release returns a resource acquired with desc to the pool.
	//
	// Parameters:
	//   - desc: the descriptor the resource was acquired with
	//   - resource: the resource
	Release(desc render_graph.TextureDesc, resource T)

	// EndFrame ages idle resources and frees those idle for more than the configured number of frames.
	EndFrame()

	// Stats returns the pool counters.
	//
	// Returns:
	//   - PoolStats: the counters
	Stats() PoolStats

	// Clear frees every idle resource.
	Clear()
}

type poolKey struct {
	width, height uint32
	format        wgpu.TextureFormat
}

type poolEntry[T any] struct {
	resource   T
	idleFrames int
}

type texturePool[T any] struct {
	mu            *sync.Mutex
	allocator     TextureAllocator[T]
	maxIdleFrames int
	idle          map[poolKey][]poolEntry[T]
	stats         PoolStats
}

var _ TexturePool[struct{}] = &texturePool[struct{}]{}

// NewTexturePool creates a TexturePool backed by allocator.
//
// Parameters:
//   - allocator: creates and frees the backing resources
//   - maxIdleFrames: frames an idle resource survives before it is freed; values below 1 use DefaultMaxIdleFrames
//
// Returns:
//   - TexturePool[T]: the new pool
func NewTexturePool[T any](allocator TextureAllocator[T], maxIdleFrames int) TexturePool[T] {
	if maxIdleFrames < 1 {
		maxIdleFrames = DefaultMaxIdleFrames
	}
	return &texturePool[T]{
		mu:            &sync.Mutex{},
		allocator:     allocator,
		maxIdleFrames: maxIdleFrames,
		idle:          make(map[poolKey][]poolEntry[T]),
	}
}

func keyOf(desc render_graph.TextureDesc) poolKey {
	return poolKey{width: desc.Width, height: desc.Height, format: desc.Format}
}

func (p *texturePool[T]) Acquire(desc render_graph.TextureDesc) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyOf(desc)
	if entries := p.idle[k]; len(entries) > 0 {
		last := entries[len(entries)-1]
		p.idle[k] = entries[:len(entries)-1]
		p.stats.Reuses++
		p.stats.Idle--
		return last.resource, nil
	}

	r, err := p.allocator.Allocate(desc)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s %dx%d: %w", render_graph.ErrAllocationFailed, desc.Label, desc.Width, desc.Height, err)
	}
	p.stats.Allocations++
	return r, nil
}

func (p *texturePool[T]) Release(desc render_graph.TextureDesc, resource T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyOf(desc)
	p.idle[k] = append(p.idle[k], poolEntry[T]{resource: resource})
	p.stats.Idle++
}

func (p *texturePool[T]) EndFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, entries := range p.idle {
		kept := entries[:0]
		for _, e := range entries {
			e.idleFrames++
			if e.idleFrames > p.maxIdleFrames {
				p.allocator.Free(e.resource)
				p.stats.Evictions++
				p.stats.Idle--
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) == 0 {
			delete(p.idle, k)
			continue
		}
		p.idle[k] = kept
	}
}

func (p *texturePool[T]) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *texturePool[T]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for k, entries := range p.idle {
		for _, e := range entries {
			p.allocator.Free(e.resource)
		}
		delete(p.idle, k)
	}
	p.stats.Idle = 0
}
