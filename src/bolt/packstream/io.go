package packstream

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// Output is the byte-sink adapter the primitive codec writes through. It
// may buffer; callers must not assume a write is observable on the wire
// until the enclosing session message is flushed.
type Output struct {
	w io.Writer
}

// NewOutput wraps an io.Writer as an Output adapter.
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

func (o *Output) writeByte(b byte) error {
	_, err := o.w.Write([]byte{b})
	if err != nil {
		return wrapIoError(-1, err)
	}
	return nil
}

func (o *Output) writeBytes(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := o.w.Write(b); err != nil {
		return wrapIoError(-1, err)
	}
	return nil
}

func (o *Output) writeInt8(v int8) error {
	return o.writeByte(byte(v))
}

func (o *Output) writeInt16(v int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	return o.writeBytes(buf[:])
}

func (o *Output) writeInt32(v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return o.writeBytes(buf[:])
}

func (o *Output) writeInt64(v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return o.writeBytes(buf[:])
}

func (o *Output) writeUint32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return o.writeBytes(buf[:])
}

func (o *Output) writeFloat64(v float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	return o.writeBytes(buf[:])
}

// lenReader is implemented by sources that know their own exact unread
// length, such as *bytes.Buffer and *bytes.Reader. messaging's
// readChunkedMessage reassembles a whole message into a *bytes.Buffer
// before handing it to NewUnpacker, so the common decode path can size-check
// against the true remaining input rather than a transient buffer fill.
type lenReader interface {
	Len() int
}

// Input is the byte-source adapter the primitive codec reads through. It
// supports peeking the next byte without consuming it, which the graph
// value codec relies on to classify the upcoming value before dispatching.
type Input struct {
	r      *bufio.Reader
	src    lenReader
	offset int64
}

// NewInput wraps an io.Reader as an Input adapter.
func NewInput(r io.Reader) *Input {
	in := &Input{}
	if br, ok := r.(*bufio.Reader); ok {
		in.r = br
	} else {
		in.r = bufio.NewReader(r)
	}
	if lr, ok := r.(lenReader); ok {
		in.src = lr
	}
	return in
}

// Offset returns the number of bytes consumed so far, for error reporting.
func (in *Input) Offset() int64 { return in.offset }

// peekMarker returns the next byte without consuming it.
func (in *Input) peekMarker() (byte, error) {
	b, err := in.r.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0, newError(MalformedFormat, in.offset, "unexpected end of stream")
		}
		return 0, wrapIoError(in.offset, err)
	}
	return b[0], nil
}

func (in *Input) readByte() (byte, error) {
	b, err := in.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, newError(MalformedFormat, in.offset, "unexpected end of stream while reading byte")
		}
		return 0, wrapIoError(in.offset, err)
	}
	in.offset++
	return b, nil
}

// remaining reports the exact number of unread bytes left in the input, and
// whether that count is known at all. It is only accurate when the wrapped
// reader exposes its own remaining length (src != nil, e.g. a *bytes.Buffer
// holding a fully reassembled message); bufio.Reader.Buffered() alone is not
// a valid stand-in, since it reflects only what has been pulled into the
// bufio window so far and is silent about bytes still unread past it.
func (in *Input) remaining() (n int, known bool) {
	if in.src == nil {
		return 0, false
	}
	return in.src.Len() + in.r.Buffered(), true
}

func (in *Input) readBytes(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	if n < 0 {
		return nil, newError(MalformedFormat, in.offset, "negative length %d", n)
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(in.r, buf)
	in.offset += int64(read)
	if err != nil {
		return nil, newError(MalformedFormat, in.offset, "unexpected end of stream while reading %d bytes (got %d)", n, read)
	}
	return buf, nil
}

func (in *Input) readInt8() (int8, error) {
	b, err := in.readByte()
	if err != nil {
		return 0, err
	}
	return int8(b), nil
}

func (in *Input) readInt16() (int16, error) {
	b, err := in.readBytes(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (in *Input) readInt32() (int32, error) {
	b, err := in.readBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (in *Input) readInt64() (int64, error) {
	b, err := in.readBytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (in *Input) readUint32() (uint32, error) {
	b, err := in.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (in *Input) readFloat64() (float64, error) {
	b, err := in.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// checkSize enforces the §4.3 size sanity check: a declared container size
// must not exceed what remains in the input, so a decoder never allocates
// ahead of the wire based on an attacker-controlled size prefix. minCost is
// the minimum bytes each element is assumed to cost (2 for maps, one byte
// for the key and one for the value; 1 for lists, bytes and strings).
//
// The remaining-input comparison only runs when the wrapped reader can
// report its exact unread length (see lenReader); against a live stream
// without that guarantee, a declared size is checked solely against the
// wire format's absolute maximum, and a size that's merely larger than
// what has arrived so far is left to readBytes' own bounded read to reject.
func (in *Input) checkSize(size uint64, minCost int) error {
	if size > maxContainerLength {
		return newError(MalformedFormat, in.offset, "declared size %d exceeds maximum %d", size, maxContainerLength)
	}
	avail, known := in.remaining()
	if !known {
		return nil
	}
	needed := size * uint64(minCost)
	if needed > uint64(avail) {
		return newError(MalformedFormat, in.offset, "declared size %d exceeds %d bytes remaining in input", size, avail)
	}
	return nil
}
