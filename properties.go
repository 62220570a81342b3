package analytics

import "time"

// Properties is an ordered set of event or profile properties. It is a
// dict-rooted value tree built up one property at a time; re-adding a key
// replaces the previous value, and enumeration order is the reverse of
// insertion order.
//
// A Properties value is not safe for concurrent mutation.
type Properties struct {
	root *node
}

// NewProperties returns an empty property set.
func NewProperties() *Properties {
	return &Properties{root: newDictNode("properties")}
}

// AddBool adds a Bool property under key.
func (p *Properties) AddBool(key string, value bool) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}
	return p.root.addChild(newBoolNode(key, value))
}

// AddNumber adds a Number property under key. Numbers are serialized with
// exactly three decimal places.
func (p *Properties) AddNumber(key string, value float64) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}
	return p.root.addChild(newNumberNode(key, value))
}

// AddInt adds an Int property under key.
func (p *Properties) AddInt(key string, value int64) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}
	return p.root.addChild(newIntNode(key, value))
}

// AddDate adds a Date property under key, carrying t's epoch seconds and
// its microsecond field.
func (p *Properties) AddDate(key string, t time.Time) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}
	return p.root.addChild(newDateNode(key, t.Unix(), t.Nanosecond()/1000))
}

// AddString adds a String property under key. The value must be UTF-8; a
// malformed value is not rejected here, but degrades to U+FFFD replacement
// characters when the record is serialized.
func (p *Properties) AddString(key, value string) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}
	return p.root.addChild(newStringNode(key, value))
}

// AppendList appends value to the List property under key, creating the
// list on first use. List elements are strings.
func (p *Properties) AppendList(key, value string) error {
	if p == nil || p.root == nil {
		return ErrInvalidParameter
	}

	list := p.root.findChild(key)
	if list == nil {
		list = newListNode(key)
		if err := p.root.addChild(list); err != nil {
			return err
		}
	} else if list.tag != listTag {
		return ErrInvalidParameter
	}

	return list.addChild(newStringNode("", value))
}
