/*
Package analytics provides a client-side event tracking SDK, including:

  - `analytics.Properties` - builds structured event and profile
    properties over a shared tagged value tree
  - `analytics.Client` - validates calls, assembles the canonical event
    envelope, and hands encoded records to a Consumer
  - `analytics.Encoder` - serializes a value tree to one JSON line,
    bridging the Client and the Consumers

The Client and the Consumers are coupled only via the encoded record
bytes, so transports are pluggable behind the `Consumer` interface.

Examples of efficiency optimizations:

  - shared encoders/buffers with comprehensive pooling to minimize heap
    allocations
  - property values adopted into an envelope are shared, never copied
  - the super property snapshot holds its lock only for the merge copy,
    never during validation, encoding, or I/O
*/
package analytics
