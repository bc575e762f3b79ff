// Package tags maps tag text to dense integer IDs and tracks how many posts
// carry each tag.
package tags

// Dictionary assigns IDs in first-seen order. IDs are never reused or
// reordered and counts only grow. Tag text is stored once, in names; every
// other structure refers to a tag by its ID.
type Dictionary struct {
	index  map[string]int
	names  []string
	counts []uint32
}

// Entry is one tag with its post count, in ID order when listed.
type Entry struct {
	Name  string `json:"name"`
	Count uint32 `json:"count"`
}

// NewDictionary creates an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

// FromEntries rebuilds a dictionary from its ID-ordered entries. A repeated
// name keeps the first ID and adds to its count.
func FromEntries(entries []Entry) *Dictionary {
	d := &Dictionary{
		index:  make(map[string]int, len(entries)),
		names:  make([]string, 0, len(entries)),
		counts: make([]uint32, 0, len(entries)),
	}
	for _, e := range entries {
		if id, ok := d.index[e.Name]; ok {
			d.counts[id] += e.Count
			continue
		}
		d.index[e.Name] = len(d.names)
		d.names = append(d.names, e.Name)
		d.counts = append(d.counts, e.Count)
	}
	return d
}

// Add records one more occurrence of tag and returns its ID, assigning a
// new one on first sight.
func (d *Dictionary) Add(tag string) int {
	if id, ok := d.index[tag]; ok {
		d.counts[id]++
		return id
	}
	id := len(d.names)
	d.index[tag] = id
	d.names = append(d.names, tag)
	d.counts = append(d.counts, 1)
	return id
}

// ID looks up the ID of tag.
func (d *Dictionary) ID(tag string) (int, bool) {
	id, ok := d.index[tag]
	return id, ok
}

// Name returns the text of id.
func (d *Dictionary) Name(id int) (string, bool) {
	if id < 0 || id >= len(d.names) {
		return "", false
	}
	return d.names[id], true
}

// Count returns the number of posts carrying id, 0 for unknown IDs.
func (d *Dictionary) Count(id int) uint32 {
	if id < 0 || id >= len(d.counts) {
		return 0
	}
	return d.counts[id]
}

// Len returns the number of distinct tags.
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Entries lists every tag in ID order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, len(d.names))
	for i, name := range d.names {
		out[i] = Entry{Name: name, Count: d.counts[i]}
	}
	return out
}
