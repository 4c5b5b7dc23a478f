package buffer

// Clone returns a deep copy of the document. IDs taken from d address the
// same nodes in the copy.
func (d *Document) Clone() *Document {
	c := &Document{head: d.head}
	if d.chars != nil {
		c.chars = make([]charNode, len(d.chars))
		copy(c.chars, d.chars)
	}
	if d.lines != nil {
		c.lines = make([]lineNode, len(d.lines))
		copy(c.lines, d.lines)
	}
	if d.free != nil {
		c.free = make([]NodeID, len(d.free))
		copy(c.free, d.free)
	}
	return c
}

// Equal reports whether two documents hold the same lines with the same
// node values, placeholders included. Arena layout is not compared.
func (d *Document) Equal(other *Document) bool {
	a, b := d.head, other.head
	for a.Valid() && b.Valid() {
		na, nb := d.lines[a].head, other.lines[b].head
		for na.Valid() && nb.Valid() {
			if d.chars[na].value != other.chars[nb].value {
				return false
			}
			na, nb = d.chars[na].next, other.chars[nb].next
		}
		if na.Valid() || nb.Valid() {
			return false
		}
		a, b = d.lines[a].next, other.lines[b].next
	}
	return a.Valid() == b.Valid()
}
