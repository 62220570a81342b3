package analytics

import (
	"fmt"
	"os"
	"time"

	"github.com/bitdabbler/backoff"
	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"
)

// BatchOptions are used to customize the BatchConsumer.
//
// # Invalid options are coerced
type BatchOptions struct {
	// BatchSize is the number of records buffered before a flush is
	// triggered. The maximum is 100. The default is 50.
	BatchSize int

	// MaxFlushTries bounds the attempts to journal one batch before the
	// error is returned to the caller. This must be > 0. The default is 3.
	MaxFlushTries int

	// Verbose controls whether debug logs are written to the internal
	// logger.
	Verbose bool
}

const (
	defaultBatchSize     = 50
	maxBatchSize         = 100
	defaultMaxFlushTries = 3
)

// DefaultBatchOptions returns *BatchOptions with all default values.
func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		BatchSize:     defaultBatchSize,
		MaxFlushTries: defaultMaxFlushTries,
	}
}

// resolve ensures that all options have valid values.
func (o *BatchOptions) resolve() {
	if o.BatchSize < 1 {
		o.BatchSize = defaultBatchSize
	}
	if o.BatchSize > maxBatchSize {
		o.BatchSize = maxBatchSize
	}
	if o.MaxFlushTries < 1 {
		o.MaxFlushTries = defaultMaxFlushTries
	}
}

// BatchConsumer journals records in batches for later upload by a separate
// transport. Each flush appends one gzip member to the journal file,
// containing a msgpack array of the raw JSON records, so the journal can
// be read back as a single compressed stream.
//
// Like the LoggingConsumer, it is not internally synchronized: callers
// invoking Send, Flush, or Close concurrently must serialize themselves.
type BatchConsumer struct {
	opts  *BatchOptions
	path  string
	file  *os.File
	batch []string
}

// NewBatchConsumer creates a BatchConsumer journaling to the file at path.
// The file is opened on first flush.
func NewBatchConsumer(path string, opts *BatchOptions) (*BatchConsumer, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: valid journal path required", ErrInvalidParameter)
	}

	if opts == nil {
		opts = DefaultBatchOptions()
	} else {
		opts.resolve()
	}

	return &BatchConsumer{
		opts:  opts,
		path:  path,
		batch: make([]string, 0, opts.BatchSize),
	}, nil
}

// Send buffers one record, flushing the batch once BatchSize is reached.
func (c *BatchConsumer) Send(record []byte) error {
	// the caller may reuse record's backing array after Send returns
	c.batch = append(c.batch, string(record))

	if len(c.batch) >= c.opts.BatchSize {
		return c.Flush()
	}
	return nil
}

// Flush journals the buffered batch, retrying transient I/O failures with
// exponential backoff. On terminal failure the batch stays buffered, so a
// later Flush can try again.
func (c *BatchConsumer) Flush() error {
	if len(c.batch) == 0 {
		return nil
	}

	b, err := backoff.New(
		backoff.WithInitialDelay(0),
		backoff.WithExponentialLimit(time.Second),
	)
	if err != nil {
		return err
	}

	for i := 1; ; i++ {
		err = c.writeBatch()
		if err == nil {
			c.batch = c.batch[:0]
			return nil
		}

		c.debug("failed to journal batch on attempt %d: %v", i, err)

		if i >= c.opts.MaxFlushTries {
			break
		}
		b.Sleep()
	}

	return fmt.Errorf("failed to journal batch; maxFlushTries reached: %d: %w", c.opts.MaxFlushTries, err)
}

func (c *BatchConsumer) writeBatch() error {
	if c.file == nil {
		f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open journal file: %w", err)
		}
		c.file = f
	}

	gz := gzip.NewWriter(c.file)
	if err := msgpack.NewEncoder(gz).Encode(c.batch); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode batch: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish batch member: %w", err)
	}

	return nil
}

// Close flushes the remaining batch and releases the journal file handle.
// A later Send reopens the file lazily.
func (c *BatchConsumer) Close() error {
	err := c.Flush()

	if c.file != nil {
		if cerr := c.file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close journal file: %w", cerr)
		}
		c.file = nil
	}

	return err
}

// internal logging helper:
func (c *BatchConsumer) debug(format string, args ...any) {
	if !c.opts.Verbose {
		return
	}
	InternalLogger().Printf("batch consumer: "+format, args...)
}
