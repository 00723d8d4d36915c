package render

// Registry numbers distinct URLs in first-seen order, starting at 1.
// One registry exists per page render for links and one for images; the
// driving session keeps them around so "open link N" style follow-up
// commands resolve against what was last rendered.
type Registry struct {
	urls  []string
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers a URL and returns its 1-based index. Re-registering an
// already-known URL returns its original index.
func (r *Registry) Add(url string) int {
	if n, ok := r.index[url]; ok {
		return n
	}
	r.urls = append(r.urls, url)
	n := len(r.urls)
	r.index[url] = n
	return n
}

// Len returns the number of distinct URLs registered.
func (r *Registry) Len() int { return len(r.urls) }

// URL returns the URL at 1-based index n.
func (r *Registry) URL(n int) (string, bool) {
	if n < 1 || n > len(r.urls) {
		return "", false
	}
	return r.urls[n-1], true
}

// URLs returns the registered URLs in index order. The slice is a copy.
func (r *Registry) URLs() []string {
	out := make([]string, len(r.urls))
	copy(out, r.urls)
	return out
}
