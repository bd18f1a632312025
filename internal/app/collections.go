package app

import "studyshelf/internal/model"

// Collections is the immutable, ordered set of browsable repositories.
type Collections struct {
	ordered []model.Collection
	byID    map[string]model.Collection
}

func NewCollections(cols []model.Collection) *Collections {
	c := &Collections{
		ordered: make([]model.Collection, len(cols)),
		byID:    make(map[string]model.Collection, len(cols)),
	}
	copy(c.ordered, cols)
	for _, col := range cols {
		c.byID[col.ID] = col
	}
	return c
}

func (c *Collections) Get(id string) (model.Collection, bool) {
	col, ok := c.byID[id]
	return col, ok
}

// All returns the collections in configuration order.
func (c *Collections) All() []model.Collection {
	out := make([]model.Collection, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *Collections) IDs() []string {
	ids := make([]string, len(c.ordered))
	for i, col := range c.ordered {
		ids[i] = col.ID
	}
	return ids
}
