package analytics

import "sync"

// superProperties is the property set automatically merged into every
// track and track_signup record. It is shared by every caller of one
// Client, so every operation holds the mutex, and holds it only across the
// mutation or merge copy, never during validation, encoding, or I/O.
type superProperties struct {
	mu   sync.Mutex
	dict *node
}

func newSuperProperties() *superProperties {
	return &superProperties{dict: newDictNode("properties")}
}

// register adopts every entry of props into the store, replacing entries
// already stored under the same key. The entries are shared with the
// caller's property set, not copied.
func (s *superProperties) register(props *Properties) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range props.root.children {
		s.dict.putEntry(c)
	}
}

// unregister removes every entry stored under key.
func (s *superProperties) unregister(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dict.removeChildren(key)
}

// clear removes every entry.
func (s *superProperties) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dict.removeAllChildren()
}

// mergeInto adopts a consistent snapshot of the store into target. Entries
// are shared, not copied.
func (s *superProperties) mergeInto(target *node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.dict.children {
		target.putEntry(c)
	}
}
