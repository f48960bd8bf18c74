package descriptor

// Masks returns the masks of the table for testing purposes.
func (t *Table[Key, Item]) Masks() []uint64 {
	return t.masks
}

// Items returns the items of the table for testing purposes.
func (t *Table[Key, Item]) Items() []Item {
	return t.items
}
