package analytics

// EncoderOptions are used to customize the Encoders and the Encoder pool.
//
// NB: The struct pointer options approach is used to be consistent with the
// options used for the Client.
type EncoderOptions struct {
	//NewBufferCap sets the capacity, in bytes, for newly created Encoder
	//buffers. The minimum value is 64 bytes. The default is 1KiB (1<<10).
	NewBufferCap int

	// MaxBufferCap sets the maximum buffer capacity, in bytes, beyond which
	// an Encoder will not be returned to the shared Encoder pool, to prevent
	// rare, unusually large buffers from staying resident in memory. The
	// minimum value is the `NewBufferCap`. The default is 8KiB (1<<13).
	MaxBufferCap int

	// ForceASCII controls whether every code point at or above U+0080 is
	// escaped as \uXXXX (with surrogate pairs above U+FFFF). The default is
	// false, so valid multi-byte UTF-8 is copied through unescaped.
	ForceASCII bool
}

const (
	minBufferCap        = 64
	defaultNewBufferCap = 1024
	defaultMaxBufferCap = 8192
)

// DefaultEncoderOptions returns *EncoderOptions with all default values.
func DefaultEncoderOptions() *EncoderOptions {
	return &EncoderOptions{
		NewBufferCap: defaultNewBufferCap,
		MaxBufferCap: defaultMaxBufferCap,
	}
}

// resolve ensures that all options have valid values.
func (o *EncoderOptions) resolve() {
	o.NewBufferCap = max(o.NewBufferCap, minBufferCap)
	o.MaxBufferCap = max(o.NewBufferCap, o.MaxBufferCap)
}
