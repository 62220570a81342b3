package analytics

import "slices"

// nodeTag identifies the value variant a node carries. Every consumption
// site (the encoder, the envelope builder) switches exhaustively over it.
type nodeTag int

const (
	boolTag nodeTag = iota
	numberTag
	intTag
	dateTag
	stringTag
	listTag
	dictTag
)

// node is the tagged value tree underlying Properties and event envelopes.
// A node adopted by a parent is shared, never copied. No node holds a
// back-reference to a parent, so a tree is a DAG and the garbage collector
// supplies last-owner-frees semantics.
type node struct {
	// key names the node when it is a dict entry; empty for list elements
	// and tree roots.
	key string

	tag nodeTag

	boolVal   bool
	numberVal float64
	intVal    int64
	dateSec   int64
	dateUsec  int
	strVal    string

	// children of a list or dict, most recently inserted first; the
	// enumeration (and wire) order is the reverse of insertion order
	children []*node
}

func newBoolNode(key string, v bool) *node {
	return &node{key: key, tag: boolTag, boolVal: v}
}

func newNumberNode(key string, v float64) *node {
	return &node{key: key, tag: numberTag, numberVal: v}
}

func newIntNode(key string, v int64) *node {
	return &node{key: key, tag: intTag, intVal: v}
}

func newDateNode(key string, seconds int64, microseconds int) *node {
	return &node{key: key, tag: dateTag, dateSec: seconds, dateUsec: microseconds}
}

func newStringNode(key, v string) *node {
	return &node{key: key, tag: stringTag, strVal: v}
}

func newListNode(key string) *node {
	return &node{key: key, tag: listTag}
}

func newDictNode(key string) *node {
	return &node{key: key, tag: dictTag}
}

// addChild adopts child into n. Dict children must be keyed, and inserting
// a key already present removes every existing child under that key first.
// Insertion is a prepend, not an append.
func (n *node) addChild(child *node) error {
	if n.tag != dictTag && n.tag != listTag {
		return ErrInvalidParameter
	}

	if n.tag == dictTag {
		if child.key == "" {
			return ErrInvalidParameter
		}
		n.removeChildren(child.key)
	}

	n.children = slices.Insert(n.children, 0, child)
	return nil
}

// putEntry installs a keyed child in a dict, replacing any existing
// entry under the same key. It is the infallible form of addChild for
// envelope assembly, where the parent is known to be a dict and the key
// is never empty.
func (n *node) putEntry(child *node) {
	n.removeChildren(child.key)
	n.children = slices.Insert(n.children, 0, child)
}

// removeChildren removes every child whose key matches exactly.
func (n *node) removeChildren(key string) {
	if n.tag != dictTag && n.tag != listTag {
		return
	}
	n.children = slices.DeleteFunc(n.children, func(c *node) bool {
		return c.key == key
	})
}

// removeAllChildren empties a list or dict.
func (n *node) removeAllChildren() {
	if n.tag != dictTag && n.tag != listTag {
		return
	}
	n.children = nil
}

// findChild returns the dict child stored under key, or nil. The child
// lists are expected to stay small, so the scan is linear.
func (n *node) findChild(key string) *node {
	if n.tag != dictTag || key == "" {
		return nil
	}
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	return nil
}
