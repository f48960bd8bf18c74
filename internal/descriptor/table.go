// Package descriptor maps small integer keys to items, always handing out the
// lowest key not currently in use.
package descriptor

import "math/bits"

// Table is a data structure mapping 32 bit descriptors to items.
//
// # Key allocation
//
// Insert always returns the lowest key that is not in use, so keys released
// by Delete are handed out again before the key range grows. This matches
// POSIX behavior of file descriptors.
// See https://pubs.opengroup.org/onlinepubs/9699919799/functions/V2_chap02.html#tag_15_14
//
// # Data structure design
//
// Occupancy is tracked in 64 bit masks, one bit per key, so finding the
// lowest free key is a scan for the first mask with a zero bit. Lookups are a
// bounds check plus a bit test.
//
// The zero value is an empty table ready to use. A Table is not safe for
// concurrent use.
type Table[Key ~uint32, Item any] struct {
	masks []uint64
	items []Item
}

// Len returns the number of items stored in the table.
func (t *Table[Key, Item]) Len() (n int) {
	for _, mask := range t.masks {
		n += bits.OnesCount64(mask)
	}
	return n
}

// grow ensures that t has room for at least n masks (n*64 items).
func (t *Table[Key, Item]) grow(n int) {
	if n <= len(t.masks) {
		return
	}
	masks := make([]uint64, n)
	copy(masks, t.masks)

	items := make([]Item, n*64)
	copy(items, t.items)

	t.masks = masks
	t.items = items
}

// Insert stores item in the table at the lowest free key and returns it.
//
// The method does not deduplicate: inserting the same item twice yields two
// different keys.
func (t *Table[Key, Item]) Insert(item Item) Key {
	for {
		for index, mask := range t.masks {
			if ^mask == 0 { // full
				continue
			}
			shift := bits.TrailingZeros64(^mask)
			key := Key(index)*64 + Key(shift)
			t.items[key] = item
			t.masks[index] = mask | uint64(1)<<shift
			return key
		}

		n := 2 * len(t.masks)
		if n == 0 {
			n = 1
		}
		t.grow(n)
	}
}

// Lookup returns the item associated with the given key.
func (t *Table[Key, Item]) Lookup(key Key) (item Item, found bool) {
	if i := uint64(key); i < uint64(len(t.items)) {
		index, shift := i/64, i%64
		if (t.masks[index] & (uint64(1) << shift)) != 0 {
			item, found = t.items[i], true
		}
	}
	return
}

// Delete removes the item at the given key. Deleting a key that is not in the
// table is a no-op.
func (t *Table[Key, Item]) Delete(key Key) {
	if i := uint64(key); i < uint64(len(t.items)) {
		index, shift := i/64, i%64
		var zero Item
		t.items[i] = zero
		t.masks[index] &^= uint64(1) << shift
	}
}

// Range calls f for each item and its associated key in ascending key order.
// Iteration stops when f returns false.
func (t *Table[Key, Item]) Range(f func(Key, Item) bool) {
	for i, mask := range t.masks {
		for mask != 0 {
			shift := bits.TrailingZeros64(mask)
			key := Key(i)*64 + Key(shift)
			if !f(key, t.items[key]) {
				return
			}
			mask &^= uint64(1) << shift
		}
	}
}

// Reset clears the content of the table, retaining its capacity.
func (t *Table[Key, Item]) Reset() {
	for i := range t.masks {
		t.masks[i] = 0
	}
	var zero Item
	for i := range t.items {
		t.items[i] = zero
	}
}
