// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds container formats by name and encoder factories by codec.
// Probing walks formats in registration order.
type Registry struct {
	formats  map[string]ContainerFormat
	order    []string
	encoders map[CodecID]EncoderFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		formats:  make(map[string]ContainerFormat),
		encoders: make(map[CodecID]EncoderFactory),
		mtx:      &sync.Mutex{},
	}
}

// Register adds f, replacing any format registered under the same name.
func (r *Registry) Register(f ContainerFormat) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.formats[f.Name]; !ok {
		r.order = append(r.order, f.Name)
	}
	r.formats[f.Name] = f
}

func (r *Registry) Get(name string) (ContainerFormat, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.formats[strings.ToLower(name)]
	return f, ok
}

// ByExtension finds a format by file extension, with or without the dot.
func (r *Registry) ByExtension(ext string) (ContainerFormat, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, name := range r.order {
		f := r.formats[name]
		if slices.Contains(f.Extensions, ext) {
			return f, true
		}
	}

	return ContainerFormat{}, false
}

// Probe returns the first readable format whose probe accepts header.
func (r *Registry) Probe(header []byte) (ContainerFormat, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, name := range r.order {
		f := r.formats[name]
		if f.NewDemuxer != nil && f.Probe != nil && f.Probe(header) {
			return f, true
		}
	}

	return ContainerFormat{}, false
}

// Formats lists the registered formats sorted by name.
func (r *Registry) Formats() []ContainerFormat {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]ContainerFormat, 0, len(r.formats))
	for _, f := range r.formats {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b ContainerFormat) int { return strings.Compare(a.Name, b.Name) })

	return out
}

func (r *Registry) RegisterEncoder(codec CodecID, f EncoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.encoders[codec] = f
}

// NewEncoder creates an unopened encoder for params.Codec.
func (r *Registry) NewEncoder(params CodecParams) (Encoder, error) {
	r.mtx.Lock()
	f, ok := r.encoders[params.Codec]
	r.mtx.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: no encoder for %q", ErrUnsupportedCodec, params.Codec)
	}

	return f(params)
}

// Encoders lists the codecs with a registered encoder, sorted.
func (r *Registry) Encoders() []CodecID {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]CodecID, 0, len(r.encoders))
	for id := range r.encoders {
		out = append(out, id)
	}
	slices.Sort(out)

	return out
}
