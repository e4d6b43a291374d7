package headless

// Backend bundles a shared renderer with the displays created on it.
type Backend struct {
	renderer *Renderer
	displays []*Display
}

// NewBackend creates a backend with a fresh renderer.
func NewBackend() *Backend {
	return &Backend{renderer: NewRenderer()}
}

// Renderer returns the shared renderer.
func (b *Backend) Renderer() *Renderer { return b.renderer }

// NewDisplay creates a display on the backend's renderer.
func (b *Backend) NewDisplay(name string, width, height int, scale float64) *Display {
	d := NewDisplay(b.renderer, name, width, height, scale)
	b.displays = append(b.displays, d)
	return d
}

// Display looks up a display by name.
func (b *Backend) Display(name string) (*Display, bool) {
	for _, d := range b.displays {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}

// Displays returns every display created so far.
func (b *Backend) Displays() []*Display {
	out := make([]*Display, len(b.displays))
	copy(out, b.displays)
	return out
}
