package analytics

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// library identity reported in the lib metadata dict and merged into the
// properties of track records
const (
	libName    = "Golang"
	libVersion = "0.2.0"
	libMethod  = "code"
)

// record types
const (
	typeTrack            = "track"
	typeTrackSignup      = "track_signup"
	typeProfileSet       = "profile_set"
	typeProfileSetOnce   = "profile_set_once"
	typeProfileIncrement = "profile_increment"
	typeProfileAppend    = "profile_append"
	typeProfileUnset     = "profile_unset"
	typeProfileDelete    = "profile_delete"
)

// signupEvent is the fixed event name carried by track_signup records.
const signupEvent = "$SignUp"

// Client validates tracking calls, assembles the canonical event envelope,
// and hands each encoded record to its Consumer. Every call is a bounded,
// synchronous unit of work; the Client starts no goroutines of its own.
//
// The super property set is safe for concurrent use. The Consumer is
// invoked without additional synchronization, so concurrent callers
// sharing one Client must respect the Consumer's own contract.
type Client struct {
	opts     *ClientOptions
	consumer Consumer
	pool     *EncoderPool
	super    *superProperties
}

// NewClient creates a new Client sending records to consumer.
func NewClient(consumer Consumer, opts *ClientOptions) (*Client, error) {
	if consumer == nil {
		return nil, fmt.Errorf("%w: valid consumer required", ErrInvalidParameter)
	}

	if opts == nil {
		opts = DefaultClientOptions()
	} else {
		opts.resolve()
	}

	c := &Client{
		opts:     opts,
		consumer: consumer,
		pool:     NewEncoderPool(opts.Encoder),
		super:    newSuperProperties(),
	}

	c.debug("starting Client with the resolved ClientOptions: %+v", c.opts)

	return c, nil
}

// RegisterSuperProperties merges props into the shared super property set,
// which is automatically folded into every subsequent Track and
// TrackSignup record. Keys already registered are replaced; when a Track
// call supplies a property under the same key as a super property, the
// call's value wins.
func (c *Client) RegisterSuperProperties(props *Properties) error {
	if props == nil || props.root == nil || props.root.tag != dictTag {
		return fmt.Errorf("%w: properties required", ErrInvalidParameter)
	}
	c.super.register(props)
	return nil
}

// UnregisterSuperProperty removes the super property stored under key.
func (c *Client) UnregisterSuperProperty(key string) {
	c.super.unregister(key)
}

// ClearSuperProperties removes every super property.
func (c *Client) ClearSuperProperties() {
	c.super.clear()
}

// Track records one event performed by the subject identified by
// distinctID. props may be nil.
func (c *Client) Track(distinctID, event string, props *Properties) error {
	return c.send(distinctID, "", typeTrack, event, props, callSite())
}

// TrackSignup links the anonymous subject originID to the registered
// subject distinctID. props may be nil.
func (c *Client) TrackSignup(distinctID, originID string, props *Properties) error {
	return c.send(distinctID, originID, typeTrackSignup, signupEvent, props, callSite())
}

// ProfileSet overwrites the given attributes of the subject's profile.
func (c *Client) ProfileSet(distinctID string, props *Properties) error {
	if props == nil {
		return fmt.Errorf("%w: properties required", ErrInvalidParameter)
	}
	return c.send(distinctID, "", typeProfileSet, "", props, callSite())
}

// ProfileSetOnce sets the given profile attributes only where no value is
// stored yet.
func (c *Client) ProfileSetOnce(distinctID string, props *Properties) error {
	if props == nil {
		return fmt.Errorf("%w: properties required", ErrInvalidParameter)
	}
	return c.send(distinctID, "", typeProfileSetOnce, "", props, callSite())
}

// ProfileIncrement adjusts numeric profile attributes by the given deltas.
// Values are expected to be numeric, but are not type-checked here.
func (c *Client) ProfileIncrement(distinctID string, props *Properties) error {
	if props == nil {
		return fmt.Errorf("%w: properties required", ErrInvalidParameter)
	}
	return c.send(distinctID, "", typeProfileIncrement, "", props, callSite())
}

// ProfileAppend appends elements to list-typed profile attributes.
func (c *Client) ProfileAppend(distinctID string, props *Properties) error {
	if props == nil {
		return fmt.Errorf("%w: properties required", ErrInvalidParameter)
	}
	return c.send(distinctID, "", typeProfileAppend, "", props, callSite())
}

// ProfileUnset removes one attribute from the subject's profile.
func (c *Client) ProfileUnset(distinctID, key string) error {
	props := NewProperties()
	if err := props.AddBool(key, true); err != nil {
		return err
	}
	return c.send(distinctID, "", typeProfileUnset, "", props, callSite())
}

// ProfileDelete removes the subject's profile entirely.
func (c *Client) ProfileDelete(distinctID string) error {
	return c.send(distinctID, "", typeProfileDelete, "", NewProperties(), callSite())
}

// Flush asks the Consumer to drain any buffered records.
func (c *Client) Flush() error {
	return c.consumer.Flush()
}

// Close flushes and closes the Consumer. The Client must not be used
// afterwards.
func (c *Client) Close() error {
	return c.consumer.Close()
}

func isTrackType(recordType string) bool {
	return recordType == typeTrack || recordType == typeTrackSignup
}

// checkRecord validates a call before any state is touched; a failure here
// means nothing was mutated and nothing reaches the Consumer.
func (c *Client) checkRecord(distinctID, originID, recordType, event string, props *Properties) error {
	// a zero-value Properties has no value tree; reject it like nil
	// properties where properties are required
	if props != nil && props.root == nil {
		return fmt.Errorf("%w: properties carry no value tree", ErrInvalidParameter)
	}
	if err := checkID(distinctID); err != nil {
		return fmt.Errorf("invalid distinct id: %w", err)
	}
	if recordType == typeTrackSignup {
		if err := checkID(originID); err != nil {
			return fmt.Errorf("invalid origin id: %w", err)
		}
	}
	if recordType == typeTrack {
		if err := checkName(event); err != nil {
			return fmt.Errorf("invalid event name: %w", err)
		}
	}
	if props != nil {
		for _, child := range props.root.children {
			if err := checkName(child.key); err != nil {
				return fmt.Errorf("invalid property name: %w", err)
			}
		}
	}
	return nil
}

// send assembles and delivers one record envelope. Envelope fields are
// dict entries and therefore enumerate in reverse insertion order on the
// wire; the insertion sequence below is fixed for wire compatibility.
func (c *Client) send(distinctID, originID, recordType, event string, props *Properties, libDetail string) error {

	if err := c.checkRecord(distinctID, originID, recordType, event, props); err != nil {
		return err
	}

	msg := newDictNode("")

	msg.putEntry(newStringNode("type", recordType))
	msg.putEntry(newStringNode("distinct_id", distinctID))
	if recordType == typeTrackSignup {
		msg.putEntry(newStringNode("original_id", originID))
	}
	if isTrackType(recordType) {
		msg.putEntry(newStringNode("event", event))
	}

	msg.putEntry(newIntNode("time", time.Now().UnixMilli()))

	lib := newDictNode("lib")
	lib.putEntry(newStringNode("$lib", libName))
	lib.putEntry(newStringNode("$lib_version", libVersion))
	lib.putEntry(newStringNode("$lib_method", libMethod))
	lib.putEntry(newStringNode("$lib_detail", libDetail))
	msg.putEntry(lib)

	inner := newDictNode("properties")
	if isTrackType(recordType) {
		inner.putEntry(newStringNode("$lib", libName))
		inner.putEntry(newStringNode("$lib_version", libVersion))
		c.super.mergeInto(inner)
	}

	if props != nil {
		for _, child := range props.root.children {
			switch child.key {
			case "$time":
				// a caller-supplied $time date overrides the record
				// timestamp and is consumed, never copied into the inner
				// properties
				if child.tag == dateTag {
					msg.putEntry(newIntNode("time", child.dateSec*1000+int64(child.dateUsec)/1000))
				}
			case "$project":
				// promoted to the envelope root as the project field
				if child.tag == stringTag {
					msg.putEntry(newStringNode("project", child.strVal))
				}
			default:
				inner.putEntry(child)
			}
		}
	}

	msg.putEntry(inner)

	enc := c.pool.Get()
	defer enc.Free()

	if err := enc.encode(msg); err != nil {
		return err
	}

	c.debug("sending record: %s", enc.Bytes())

	if err := c.consumer.Send(enc.Bytes()); err != nil {
		return fmt.Errorf("failed to send record: %w", err)
	}

	return nil
}

// callSite formats the calling code's function, file, and line as the
// "##FUNCTION##FILE##LINE" detail string recorded in the lib metadata.
func callSite() string {
	var pcs [1]uintptr
	// skip runtime.Callers, callSite, and the exported SDK method
	if runtime.Callers(3, pcs[:]) == 0 {
		return "######0"
	}
	f, _ := runtime.CallersFrames(pcs[:]).Next()

	fn := f.Function
	if idx := strings.LastIndexByte(fn, '/'); idx >= 0 {
		fn = fn[idx+1:]
	}

	return fmt.Sprintf("##%s##%s##%d", fn, f.File, f.Line)
}

// internal logging helper:
func (c *Client) debug(format string, args ...any) {
	if !c.opts.Verbose {
		return
	}
	InternalLogger().Printf(format, args...)
}
