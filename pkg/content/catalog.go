package content

import (
	"strings"

	"github.com/incept5/eve-showcase/pkg/errors"
)

// Catalog is an immutable, ordered set of capabilities.
type Catalog struct {
	caps  []*Capability
	index map[string]int
}

// NewCatalog validates caps and builds a catalog in the given order.
//
// Every capability needs a valid, unique id (see
// [errors.ValidateCapabilityID]), a title and a diagram.
func NewCatalog(caps []Capability) (*Catalog, error) {
	if len(caps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "catalog has no capabilities")
	}
	c := &Catalog{
		caps:  make([]*Capability, 0, len(caps)),
		index: make(map[string]int, len(caps)),
	}
	for i := range caps {
		cp := caps[i]
		if err := errors.ValidateCapabilityID(cp.ID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "capability %d", i+1)
		}
		if _, dup := c.index[cp.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "duplicate capability id %q", cp.ID)
		}
		if strings.TrimSpace(cp.Title) == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "capability %q has no title", cp.ID)
		}
		if strings.TrimSpace(cp.Diagram) == "" {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "capability %q has no diagram", cp.ID)
		}
		c.index[cp.ID] = len(c.caps)
		c.caps = append(c.caps, &cp)
	}
	return c, nil
}

// Len returns the number of capabilities.
func (c *Catalog) Len() int { return len(c.caps) }

// All returns the capabilities in display order. The slice is a copy; the
// capabilities themselves must not be modified.
func (c *Catalog) All() []*Capability {
	return append([]*Capability(nil), c.caps...)
}

// Lookup returns the capability with the given id.
func (c *Catalog) Lookup(id string) (*Capability, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.caps[i], true
}

// Get is Lookup returning a CAPABILITY_NOT_FOUND error for unknown ids.
func (c *Catalog) Get(id string) (*Capability, error) {
	if cp, ok := c.Lookup(id); ok {
		return cp, nil
	}
	return nil, errors.New(errors.ErrCodeCapabilityNotFound, "no capability %q", id)
}

// Neighbors returns the capabilities before and after id in display order.
// Either is nil at the ends of the catalog or when id is unknown.
func (c *Catalog) Neighbors(id string) (prev, next *Capability) {
	i, ok := c.index[id]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		prev = c.caps[i-1]
	}
	if i < len(c.caps)-1 {
		next = c.caps[i+1]
	}
	return prev, next
}
