package analytics

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"
)

// EncoderPool defines a shared *Encoder pool, used to minimize heap
// allocations across calls.
type EncoderPool struct {
	p sync.Pool
	*EncoderOptions
}

// NewEncoderPool creates a shared *Encoder pool whose Encoders carry the
// pool's encoding options.
func NewEncoderPool(opts *EncoderOptions) *EncoderPool {
	if opts == nil {
		opts = DefaultEncoderOptions()
	} else {
		opts.resolve()
	}

	ep := &EncoderPool{EncoderOptions: opts}

	ep.p = sync.Pool{
		New: func() any {
			enc := NewEncoder(opts.NewBufferCap)
			enc.forceASCII = opts.ForceASCII
			enc.p = ep
			return enc
		},
	}

	return ep
}

// Get returns a reset Encoder from the pool.
func (p *EncoderPool) Get() *Encoder {
	return p.p.Get().(*Encoder)
}

// Put resets an Encoder and returns it to the shared pool.
func (p *EncoderPool) Put(e *Encoder) {

	// drop if the buffer got too large
	if e.Buffer.Cap() > p.MaxBufferCap {
		return
	}

	// reset for the next usage
	e.Buffer.Reset()

	// add back to the sync.Pool
	p.p.Put(e)
}

// Encoder serializes a value tree into one JSON text record, over a
// growable bytes.Buffer with amortized O(1) append.
type Encoder struct {
	*bytes.Buffer
	forceASCII bool
	p          *EncoderPool
}

// NewEncoder returns a newly allocated Encoder.
func NewEncoder(bufferCap int) *Encoder {
	buf := bytes.NewBuffer(make([]byte, 0, bufferCap))
	return &Encoder{Buffer: buf}
}

// Free returns the encoder to the shared pool after eagerly resetting it.
func (e *Encoder) Free() {
	if e.p != nil {
		e.p.Put(e)
	}
}

// Encode serializes a property set into the Encoder's buffer.
func (e *Encoder) Encode(props *Properties) error {
	if props == nil || props.root == nil {
		return ErrInvalidParameter
	}
	return e.encode(props.root)
}

// encode serializes one node. A String node that is not well-formed UTF-8
// is reported to the caller here; malformed sequences nested below a
// container degrade to U+FFFD during the walk instead.
func (e *Encoder) encode(n *node) error {
	if n == nil {
		return ErrInvalidParameter
	}
	if n.tag == stringTag && !utf8.ValidString(n.strVal) {
		return fmt.Errorf("%w: invalid utf-8 string", ErrInvalidParameter)
	}
	e.encodeNode(n)
	return nil
}

func (e *Encoder) encodeNode(n *node) {
	switch n.tag {
	case boolTag:
		if n.boolVal {
			e.WriteString("true")
		} else {
			e.WriteString("false")
		}
	case numberTag:
		e.WriteString(strconv.FormatFloat(n.numberVal, 'f', 3, 64))
	case intTag:
		e.WriteString(strconv.FormatInt(n.intVal, 10))
	case dateTag:
		e.encodeDate(n.dateSec, n.dateUsec)
	case stringTag:
		e.encodeString(n.strVal)
	case listTag:
		e.WriteByte('[')
		for i, c := range n.children {
			if i > 0 {
				e.WriteByte(',')
			}
			e.encodeNode(c)
		}
		e.WriteByte(']')
	case dictTag:
		e.WriteByte('{')
		for i, c := range n.children {
			if i > 0 {
				e.WriteByte(',')
			}
			e.WriteByte('"')
			e.WriteString(c.key)
			e.WriteString(`":`)
			e.encodeNode(c)
		}
		e.WriteByte('}')
	}
}

// encodeDate writes a local-time date literal. The trailing field carries
// the stored microsecond value verbatim: it is labelled as milliseconds by
// the wire format but is not converted, and widens past three digits for
// values of 1000 and above.
func (e *Encoder) encodeDate(seconds int64, microseconds int) {
	t := time.Unix(seconds, 0)
	fmt.Fprintf(e, "\"%04d-%02d-%02d %02d:%02d:%02d.%03d\"",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
		microseconds)
}

func (e *Encoder) encodeString(s string) {
	e.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		switch c {
		case '"':
			e.WriteString(`\"`)
			i++
		case '\\':
			e.WriteString(`\\`)
			i++
		case '\b':
			e.WriteString(`\b`)
			i++
		case '\f':
			e.WriteString(`\f`)
			i++
		case '\n':
			e.WriteString(`\n`)
			i++
		case '\r':
			e.WriteString(`\r`)
			i++
		case '\t':
			e.WriteString(`\t`)
			i++
		default:
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				// degrade a single malformed byte to U+FFFD and continue
				if e.forceASCII {
					e.WriteString(`\uFFFD`)
				} else {
					e.WriteString("\xef\xbf\xbd")
				}
				i++
			} else if c < 0x1F || (c >= 0x80 && e.forceASCII) {
				if r <= 0xFFFF {
					e.writeHexEscape(uint16(r))
				} else {
					hi, lo := toSurrogatePair(r)
					e.writeHexEscape(hi)
					e.writeHexEscape(lo)
				}
				i += size
			} else {
				e.WriteString(s[i : i+size])
				i += size
			}
		}
	}
	e.WriteByte('"')
}

const hexDigits = "0123456789ABCDEF"

func (e *Encoder) writeHexEscape(v uint16) {
	e.WriteString(`\u`)
	e.WriteByte(hexDigits[(v>>12)&0xF])
	e.WriteByte(hexDigits[(v>>8)&0xF])
	e.WriteByte(hexDigits[(v>>4)&0xF])
	e.WriteByte(hexDigits[v&0xF])
}

// toSurrogatePair splits a code point above U+FFFF into a UTF-16 surrogate
// pair. r must be in U+10000..U+10FFFF.
func toSurrogatePair(r rune) (hi, lo uint16) {
	n := uint32(r) - 0x10000
	hi = uint16((n>>10)&0x3FF) | 0xD800
	lo = uint16(n&0x3FF) | 0xDC00
	return hi, lo
}
