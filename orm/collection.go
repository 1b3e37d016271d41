package orm

import (
	"encoding/json"
	"fmt"
)

// Collection keeps models by id. Ordered collections iterate in insertion order.
type Collection[MP Identifiable[ID], ID comparable] struct {
	itemsMap   map[ID]MP
	orderedIDs []ID // nil for unordered collections
}

func NewEmptyOrderedCollection[
	P Identifiable[ID],
	ID comparable,
]() *Collection[P, ID] {
	return &Collection[P, ID]{
		itemsMap:   make(map[ID]P),
		orderedIDs: make([]ID, 0),
	}
}

func NewOrderedCollection[
	P Identifiable[ID],
	ID comparable,
](items []P) *Collection[P, ID] {
	coll := NewEmptyOrderedCollection[P, ID]()
	for _, item := range items {
		coll.Add(item)
	}
	return coll
}

func (c *Collection[MP, ID]) Len() int {
	return len(c.itemsMap)
}

func (c *Collection[MP, ID]) Has(id ID) bool {
	_, ok := c.itemsMap[id]
	return ok
}

func (c *Collection[MP, ID]) Find(id ID) (MP, bool) {
	p, ok := c.itemsMap[id]
	return p, ok
}

func (c *Collection[MP, ID]) Add(item MP) {
	id := item.GetID()
	_, already := c.itemsMap[id]
	c.itemsMap[id] = item
	if c.orderedIDs != nil && !already {
		c.orderedIDs = append(c.orderedIDs, id)
	}
}

func (c *Collection[MP, ID]) IDs() []ID {
	if c.orderedIDs != nil {
		return append([]ID(nil), c.orderedIDs...)
	}
	ids := make([]ID, 0, len(c.itemsMap))
	for id := range c.itemsMap {
		ids = append(ids, id)
	}
	return ids
}

func (c *Collection[MP, ID]) Items() []MP {
	items := make([]MP, 0, len(c.itemsMap))
	c.ForEach(func(mp MP) {
		items = append(items, mp)
	})
	return items
}

// ForEach calls fn for every model in the collection.
// If the collection has an order, it respects that order.
func (c *Collection[MP, ID]) ForEach(fn func(MP)) {
	if c.orderedIDs != nil {
		for _, id := range c.orderedIDs {
			if mp, ok := c.itemsMap[id]; ok {
				fn(mp)
			}
		}
		return
	}
	for _, mp := range c.itemsMap {
		fn(mp)
	}
}

func (c *Collection[MP, ID]) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Items())
}

// EnumerateToSlice maps every model to one value, in collection order.
// Conceptually equivalent to: [yield(m) for m in c].
func EnumerateToSlice[
	MP Identifiable[ID],
	ID comparable,
	V any,
](
	c *Collection[MP, ID],
	yield func(MP) V,
) []V {
	sl := make([]V, 0, c.Len())
	c.ForEach(func(mp MP) {
		sl = append(sl, yield(mp))
	})
	return sl
}

// CollectUniqueToSlice yields one value per model, skipping nil and repeated values.
// First-occurrence order is kept.
func CollectUniqueToSlice[
	MP Identifiable[ID],
	ID comparable,
	V comparable,
](
	c *Collection[MP, ID],
	yield func(MP) *V,
) []V {
	sl := make([]V, 0, c.Len())
	seen := make(map[V]struct{}, c.Len())
	c.ForEach(func(mp MP) {
		vp := yield(mp)
		if vp == nil {
			return
		}
		if _, dup := seen[*vp]; dup {
			return
		}
		seen[*vp] = struct{}{}
		sl = append(sl, *vp)
	})
	return sl
}

// LinkBelongsTo - Strict Version
// ForeignKeyField is on the Child
// RelationField is on the Child
func LinkBelongsTo[
	CP Identifiable[CID],
	CID comparable,
	PP Identifiable[PID],
	PID comparable,
](
	children *Collection[CP, CID],
	parents *Collection[PP, PID],
	foreignKey func(CP) PID, // on the child
	relationFieldPtr func(CP) *PP, // on the child
) error {
	for _, child := range children.itemsMap {
		fk := foreignKey(child)
		parent, ok := parents.itemsMap[fk]
		if !ok {
			return fmt.Errorf(
				"LinkBelongsTo: parent with ID %v not found for child ID %v",
				fk, child.GetID(),
			)
		}
		*relationFieldPtr(child) = parent
	}
	return nil
}
