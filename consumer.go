package analytics

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// Consumer is the pluggable sink that receives finished, encoded records.
// Each Send carries one complete JSON object, without a trailing newline.
// The record slice is only valid for the duration of the call; a Consumer
// that retains records must copy them.
type Consumer interface {
	// Send persists or transmits one encoded record. A failure is returned
	// immediately and the record is dropped, never queued for retry.
	Send(record []byte) error

	// Flush drains any buffered data toward the backing store.
	Flush() error

	// Close flushes and releases the sink's resources. A closed consumer
	// may lazily reacquire them on a later Send.
	Close() error
}

// LoggingConsumer writes one record per line to a daily-rotated log file
// named `<prefix>.log.<YYYYMMDD>`. Rotation is a pure function of the
// local calendar date, recomputed on every Send, so a new file is opened
// lazily on the first Send after midnight.
//
// A LoggingConsumer is not internally synchronized: callers invoking Send,
// Flush, or Close concurrently must serialize themselves.
type LoggingConsumer struct {
	prefix string
	date   int
	file   *os.File
	w      *bufio.Writer

	// now is the rotation clock; replaced in tests to cross a date
	// boundary
	now func() time.Time
}

const maxPrefixLen = 500

// NewLoggingConsumer creates a LoggingConsumer with the given output path
// prefix, e.g. "/data/logs/http". The backing file is opened on first
// Send.
func NewLoggingConsumer(prefix string) (*LoggingConsumer, error) {
	if len(prefix) < 1 || len(prefix) > maxPrefixLen {
		return nil, fmt.Errorf("%w: log file prefix length must be in [1,%d]", ErrInvalidParameter, maxPrefixLen)
	}
	return &LoggingConsumer{prefix: prefix, now: time.Now}, nil
}

func currentDate(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Send appends one record line to today's log file, rotating first if the
// calendar date has changed or the file was closed.
func (c *LoggingConsumer) Send(record []byte) error {
	date := currentDate(c.now())
	if c.file == nil || date != c.date {
		if err := c.Close(); err != nil {
			return err
		}

		f, err := os.OpenFile(
			fmt.Sprintf("%s.log.%d", c.prefix, date),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0o644,
		)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		c.date = date
		c.file = f
		c.w = bufio.NewWriter(f)
	}

	if _, err := c.w.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Flush drains the user-space buffer to the OS.
func (c *LoggingConsumer) Flush() error {
	if c.w == nil {
		return nil
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush log file: %w", err)
	}
	return nil
}

// Close flushes and releases the file handle. A later Send reopens the
// file lazily.
func (c *LoggingConsumer) Close() error {
	if c.file == nil {
		return nil
	}

	err := c.w.Flush()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	c.file = nil
	c.w = nil

	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
