package utils

import (
	"bufio"
	"io"
	"sync"
)

const lineTerminatorConstant = '\n'

// FlushingWriter buffers output and flushes it after every write so streamed records become
// visible immediately while each record still reaches the destination in one system call.
type FlushingWriter struct {
	destination *bufio.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps writer. Wrapping an existing FlushingWriter returns it unchanged.
func NewFlushingWriter(writer io.Writer) *FlushingWriter {
	if existing, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return existing
	}
	return &FlushingWriter{destination: bufio.NewWriter(writer)}
}

// Write delegates to the buffered destination and flushes it.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	return bytesWritten, flushingWriter.destination.Flush()
}

// WriteLine writes text followed by a newline as a single flushed record.
func (flushingWriter *FlushingWriter) WriteLine(text string) error {
	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	if _, writeError := flushingWriter.destination.WriteString(text); writeError != nil {
		return writeError
	}
	if writeError := flushingWriter.destination.WriteByte(lineTerminatorConstant); writeError != nil {
		return writeError
	}
	return flushingWriter.destination.Flush()
}
