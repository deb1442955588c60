package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultPage is the first page of any upstream list.
	DefaultPage = 1
	// DefaultSize is requested on every console list call: the console loads whole
	// collections and filters them locally instead of paging server-side.
	DefaultSize = 1000
	// MaxSize caps what a caller may ask an upstream for in one call.
	MaxSize = 1000
)

// Params holds offset pagination inputs forwarded to the backends.
type Params struct {
	Page int
	Size int
}

// All returns the "fetch everything" params the console uses by default.
func All() Params {
	return Params{Page: DefaultPage, Size: DefaultSize}
}

// Normalize enforces the default page and the size bounds.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Apply writes the commerce API's page/size parameters.
func (p Params) Apply(q url.Values) {
	n := p.Normalize()
	q.Set("page", strconv.Itoa(n.Page))
	q.Set("size", strconv.Itoa(n.Size))
}

// ApplyIdentity writes the identity API's page/pageSize parameters; zero values are
// omitted because the identity API applies its own defaults.
func (p Params) ApplyIdentity(q url.Values) {
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("pageSize", strconv.Itoa(p.Size))
	}
}
