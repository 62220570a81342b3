package analytics

// ClientOptions are used to customize the Client.
//
// # Invalid options are coerced
//
// NB: The struct pointer options approach is used to be consistent with
// the options used for the Encoder pool.
type ClientOptions struct {
	// Encoder customizes the shared Encoder pool used to serialize
	// records, including force-ASCII escaping and buffer pooling bounds.
	// If nil, DefaultEncoderOptions() is used.
	Encoder *EncoderOptions

	// Verbose controls whether debug logs are written to the internal
	// logger.
	Verbose bool
}

// DefaultClientOptions returns *ClientOptions with all default values.
func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		Encoder: DefaultEncoderOptions(),
	}
}

// resolve ensures that all options have valid values.
func (o *ClientOptions) resolve() {
	if o.Encoder == nil {
		o.Encoder = DefaultEncoderOptions()
	} else {
		o.Encoder.resolve()
	}
}
