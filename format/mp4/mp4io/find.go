package mp4io

// FindChild returns the first direct child of root with the given type.
func FindChild(root Box, tag Tag) Box {
	for _, child := range root.Base().Boxes {
		if child.Base().Type == tag {
			return child
		}
	}
	return nil
}

// FindChildren returns every direct child of root with the given type.
func FindChildren(root Box, tag Tag) (r []Box) {
	for _, child := range root.Base().Boxes {
		if child.Base().Type == tag {
			r = append(r, child)
		}
	}
	return
}

// FindPath follows direct children by type, e.g. FindPath(trak, MDIA, MINF, STBL).
func FindPath(root Box, tags ...Tag) Box {
	box := root
	for _, tag := range tags {
		if box = FindChild(box, tag); box == nil {
			return nil
		}
	}
	return box
}

// FindAll returns every box with the given type in pre-order.
func FindAll(roots []Box, tag Tag) (r []Box) {
	for _, root := range roots {
		if root.Base().Type == tag {
			r = append(r, root)
		}
		r = append(r, FindAll(root.Base().Boxes, tag)...)
	}
	return
}

// Typed converts a lookup result, returning false for nil or another type.
func Typed[T Box](box Box) (T, bool) {
	t, ok := box.(T)
	return t, ok
}

// RemoveChildren drops every direct child of root with the given type.
func RemoveChildren(root Box, tag Tag) (removed int) {
	base := root.Base()
	kept := base.Boxes[:0]
	for _, child := range base.Boxes {
		if child.Base().Type == tag {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	clear(base.Boxes[len(kept):])
	base.Boxes = kept
	return
}

// RemoveBoxes drops every box of the list with the given type.
func RemoveBoxes(boxes []Box, tag Tag) []Box {
	kept := boxes[:0]
	for _, box := range boxes {
		if box.Base().Type != tag {
			kept = append(kept, box)
		}
	}
	clear(boxes[len(kept):])
	return kept
}

// ReplaceChild puts box in place of the first child of the same type and
// drops the others, or appends it when there is none.
func ReplaceChild(root Box, box Box) {
	base := root.Base()
	tag := box.Base().Type
	kept := base.Boxes[:0]
	placed := false
	for _, child := range base.Boxes {
		switch {
		case child.Base().Type != tag:
			kept = append(kept, child)
		case !placed:
			kept = append(kept, box)
			placed = true
		}
	}
	clear(base.Boxes[len(kept):])
	base.Boxes = kept
	if !placed {
		base.Boxes = append(base.Boxes, box)
	}
}

// Parents maps every box of a tree to its container. Boxes own their
// children only; upward lookups go through this index.
type Parents map[Box]Box

// IndexParents builds the parent index of the given top-level boxes.
func IndexParents(roots []Box) Parents {
	p := make(Parents)
	var walk func(parent Box)
	walk = func(parent Box) {
		for _, child := range parent.Base().Boxes {
			p[child] = parent
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return p
}

// Ancestor returns the nearest container of box with the given type.
func (self Parents) Ancestor(box Box, tag Tag) Box {
	for parent := self[box]; parent != nil; parent = self[parent] {
		if parent.Base().Type == tag {
			return parent
		}
	}
	return nil
}
