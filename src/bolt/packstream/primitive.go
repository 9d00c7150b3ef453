package packstream

import "io"

// Packer writes PackStream-encoded values to an Output. Packer is not
// re-entrant: a single instance is bound to one goroutine at a time (spec
// §5); use distinct Packers for concurrent outputs.
type Packer struct {
	out   *Output
	codec *Codec
}

// NewPacker creates a Packer writing to w, bound to Version1.
func NewPacker(w io.Writer) *Packer {
	return &Packer{out: NewOutput(w), codec: Version1}
}

// WriteNull writes the Null marker.
func (p *Packer) WriteNull() error {
	return p.out.writeByte(nullMarker)
}

// WriteBool writes a Bool marker.
func (p *Packer) WriteBool(v bool) error {
	if v {
		return p.out.writeByte(trueMarker)
	}
	return p.out.writeByte(falseMarker)
}

// WriteInt writes the smallest size class that losslessly represents v.
func (p *Packer) WriteInt(v int64) error {
	switch {
	case v >= tinyIntMin && v <= tinyIntMax:
		return p.out.writeByte(byte(v))
	case v >= int8Min && v <= int8Max:
		if err := p.out.writeByte(int8Marker); err != nil {
			return err
		}
		return p.out.writeInt8(int8(v))
	case v >= int16Min && v <= int16Max:
		if err := p.out.writeByte(int16Marker); err != nil {
			return err
		}
		return p.out.writeInt16(int16(v))
	case v >= int32Min && v <= int32Max:
		if err := p.out.writeByte(int32Marker); err != nil {
			return err
		}
		return p.out.writeInt32(int32(v))
	default:
		if err := p.out.writeByte(int64Marker); err != nil {
			return err
		}
		return p.out.writeInt64(v)
	}
}

// WriteFloat writes a Float64 marker and payload.
func (p *Packer) WriteFloat(v float64) error {
	if err := p.out.writeByte(float64Marker); err != nil {
		return err
	}
	return p.out.writeFloat64(v)
}

// WriteBytes writes a Bytes value, choosing the smallest size class.
func (p *Packer) WriteBytes(b []byte) error {
	n := len(b)
	switch {
	case n < 256:
		if err := p.out.writeByte(bytes8Marker); err != nil {
			return err
		}
		if err := p.out.writeByte(byte(n)); err != nil {
			return err
		}
	case n < 65536:
		if err := p.out.writeByte(bytes16Marker); err != nil {
			return err
		}
		if err := p.out.writeInt16(int16(uint16(n))); err != nil {
			return err
		}
	case uint64(n) <= maxContainerLength:
		if err := p.out.writeByte(bytes32Marker); err != nil {
			return err
		}
		if err := p.out.writeUint32(uint32(n)); err != nil {
			return err
		}
	default:
		return newError(MalformedFormat, -1, "bytes value too large to pack (size: %d)", n)
	}
	return p.out.writeBytes(b)
}

// WriteString writes a String value, choosing the smallest size class.
func (p *Packer) WriteString(s string) error {
	data := []byte(s)
	n := len(data)
	switch {
	case n < 16:
		if err := p.out.writeByte(byte(tinyStringBase | n)); err != nil {
			return err
		}
	case n < 256:
		if err := p.out.writeByte(string8Marker); err != nil {
			return err
		}
		if err := p.out.writeByte(byte(n)); err != nil {
			return err
		}
	case n < 65536:
		if err := p.out.writeByte(string16Marker); err != nil {
			return err
		}
		if err := p.out.writeInt16(int16(uint16(n))); err != nil {
			return err
		}
	case uint64(n) <= maxContainerLength:
		if err := p.out.writeByte(string32Marker); err != nil {
			return err
		}
		if err := p.out.writeUint32(uint32(n)); err != nil {
			return err
		}
	default:
		return newError(MalformedFormat, -1, "string too large to pack (size: %d)", n)
	}
	return p.out.writeBytes(data)
}

// WriteListHeader writes a List marker for a container of n items; the
// caller must follow with exactly n packed values. Lists are
// length-prefixed, not length-discovered.
func (p *Packer) WriteListHeader(n int) error {
	return p.writeContainerHeader(n, tinyListBase, list8Marker, list16Marker, list32Marker)
}

// WriteMapHeader writes a Map marker for n key/value pairs; the caller must
// follow with exactly n (string key, value) pairs.
func (p *Packer) WriteMapHeader(n int) error {
	return p.writeContainerHeader(n, tinyMapBase, map8Marker, map16Marker, map32Marker)
}

func (p *Packer) writeContainerHeader(n int, tinyBase, m8, m16, m32 byte) error {
	if n < 0 {
		return newError(MalformedFormat, -1, "negative container size %d", n)
	}
	switch {
	case n < 16:
		return p.out.writeByte(tinyBase | byte(n))
	case n < 256:
		if err := p.out.writeByte(m8); err != nil {
			return err
		}
		return p.out.writeByte(byte(n))
	case n < 65536:
		if err := p.out.writeByte(m16); err != nil {
			return err
		}
		return p.out.writeInt16(int16(uint16(n)))
	case uint64(n) <= maxContainerLength:
		if err := p.out.writeByte(m32); err != nil {
			return err
		}
		return p.out.writeUint32(uint32(n))
	default:
		return newError(MalformedFormat, -1, "container too large to pack (size: %d)", n)
	}
}

// WriteStructHeader writes a Struct marker for n fields followed by the
// signature byte; the caller must follow with exactly n packed field
// values. Used both by the graph value codec and, at the low level, by the
// session protocol to frame its own message envelopes.
func (p *Packer) WriteStructHeader(n int, signature byte) error {
	if n < 0 {
		return newError(MalformedFormat, -1, "negative struct arity %d", n)
	}
	switch {
	case n < 16:
		if err := p.out.writeByte(byte(tinyStructBase | n)); err != nil {
			return err
		}
	case n < 256:
		if err := p.out.writeByte(struct8Marker); err != nil {
			return err
		}
		if err := p.out.writeByte(byte(n)); err != nil {
			return err
		}
	case n < 65536:
		if err := p.out.writeByte(struct16Marker); err != nil {
			return err
		}
		if err := p.out.writeInt16(int16(uint16(n))); err != nil {
			return err
		}
	default:
		return newError(MalformedFormat, -1, "struct has too many fields to pack (size: %d)", n)
	}
	return p.out.writeByte(signature)
}

// Unpacker reads PackStream-encoded values from an Input. Like Packer, it
// is not re-entrant across goroutines.
type Unpacker struct {
	in    *Input
	codec *Codec
}

// NewUnpacker creates an Unpacker reading from r, bound to Version1.
func NewUnpacker(r io.Reader) *Unpacker {
	return &Unpacker{in: NewInput(r), codec: Version1}
}

// PeekType classifies the next marker without consuming it. Any byte not
// matching a known marker is reported as a MalformedFormat error.
func (u *Unpacker) PeekType() (ValueType, error) {
	marker, err := u.in.peekMarker()
	if err != nil {
		return 0, err
	}
	t := classifyMarker(marker)
	if t == typeUnknown {
		return 0, newError(MalformedFormat, u.in.offset, "unknown PackStream marker 0x%02X", marker)
	}
	return t, nil
}

// readMarker consumes and returns the next marker byte.
func (u *Unpacker) readMarker() (byte, error) {
	return u.in.readByte()
}

func (u *Unpacker) readSize(width int) (uint64, error) {
	switch width {
	case 1:
		b, err := u.in.readByte()
		return uint64(b), err
	case 2:
		v, err := u.in.readInt16()
		return uint64(uint16(v)), err
	case 4:
		v, err := u.in.readUint32()
		return uint64(v), err
	default:
		return 0, newError(MalformedFormat, u.in.offset, "invalid size width %d", width)
	}
}

// readInt reads the payload (not the marker) of a fixed-width signed
// integer and always widens it to int64.
func (u *Unpacker) readInt(width int) (int64, error) {
	switch width {
	case 1:
		v, err := u.in.readInt8()
		return int64(v), err
	case 2:
		v, err := u.in.readInt16()
		return int64(v), err
	case 4:
		v, err := u.in.readInt32()
		return int64(v), err
	case 8:
		return u.in.readInt64()
	default:
		return 0, newError(MalformedFormat, u.in.offset, "invalid int width %d", width)
	}
}

// UnpackListHeader reads a List marker and returns its declared length,
// sanity-checked against the remaining input. Used by low-level consumers
// that want to read list elements themselves.
func (u *Unpacker) UnpackListHeader() (int, error) {
	marker, err := u.readMarker()
	if err != nil {
		return 0, err
	}
	return u.readListHeaderBody(marker)
}

func (u *Unpacker) readListHeaderBody(marker byte) (int, error) {
	var size uint64
	switch {
	case marker&markerHighNibbleMask == tinyListBase:
		size = uint64(marker & markerLowNibbleMask)
	case marker == list8Marker:
		s, err := u.readSize(1)
		if err != nil {
			return 0, err
		}
		size = s
	case marker == list16Marker:
		s, err := u.readSize(2)
		if err != nil {
			return 0, err
		}
		size = s
	case marker == list32Marker:
		s, err := u.readSize(4)
		if err != nil {
			return 0, err
		}
		size = s
	default:
		return 0, newError(MalformedFormat, u.in.offset, "not a list marker: 0x%02X", marker)
	}
	if err := u.in.checkSize(size, 1); err != nil {
		return 0, err
	}
	return int(size), nil
}

// UnpackMapHeader reads a Map marker and returns its declared pair count,
// sanity-checked against the remaining input.
func (u *Unpacker) UnpackMapHeader() (int, error) {
	marker, err := u.readMarker()
	if err != nil {
		return 0, err
	}
	return u.readMapHeaderBody(marker)
}

func (u *Unpacker) readMapHeaderBody(marker byte) (int, error) {
	var size uint64
	switch {
	case marker&markerHighNibbleMask == tinyMapBase:
		size = uint64(marker & markerLowNibbleMask)
	case marker == map8Marker:
		s, err := u.readSize(1)
		if err != nil {
			return 0, err
		}
		size = s
	case marker == map16Marker:
		s, err := u.readSize(2)
		if err != nil {
			return 0, err
		}
		size = s
	case marker == map32Marker:
		s, err := u.readSize(4)
		if err != nil {
			return 0, err
		}
		size = s
	default:
		return 0, newError(MalformedFormat, u.in.offset, "not a map marker: 0x%02X", marker)
	}
	// Each pair costs at least 2 bytes (a 1-byte key marker and a 1-byte
	// value marker at minimum).
	if err := u.in.checkSize(size, 2); err != nil {
		return 0, err
	}
	return int(size), nil
}

// UnpackStructHeader reads a Struct marker and its signature byte, and
// returns the declared field count. This is the low-level entry point the
// session protocol uses to peel message envelopes without going through
// the graph-aware struct dispatch in UnpackOne (spec §6).
func (u *Unpacker) UnpackStructHeader() (size int, signature byte, err error) {
	marker, err := u.readMarker()
	if err != nil {
		return 0, 0, err
	}
	return u.readStructHeaderBody(marker)
}

func (u *Unpacker) readStructHeaderBody(marker byte) (int, byte, error) {
	var size uint64
	switch {
	case marker&markerHighNibbleMask == tinyStructBase:
		size = uint64(marker & markerLowNibbleMask)
	case marker == struct8Marker:
		s, err := u.readSize(1)
		if err != nil {
			return 0, 0, err
		}
		size = s
	case marker == struct16Marker:
		s, err := u.readSize(2)
		if err != nil {
			return 0, 0, err
		}
		size = s
	default:
		return 0, 0, newError(MalformedFormat, u.in.offset, "not a struct marker: 0x%02X", marker)
	}
	sig, err := u.in.readByte()
	if err != nil {
		return 0, 0, err
	}
	return int(size), sig, nil
}

func (u *Unpacker) unpackStringBody(marker byte) (string, error) {
	var size uint64
	switch {
	case marker&markerHighNibbleMask == tinyStringBase:
		size = uint64(marker & markerLowNibbleMask)
	case marker == string8Marker:
		s, err := u.readSize(1)
		if err != nil {
			return "", err
		}
		size = s
	case marker == string16Marker:
		s, err := u.readSize(2)
		if err != nil {
			return "", err
		}
		size = s
	case marker == string32Marker:
		s, err := u.readSize(4)
		if err != nil {
			return "", err
		}
		size = s
	default:
		return "", newError(MalformedFormat, u.in.offset, "not a string marker: 0x%02X", marker)
	}
	if err := u.in.checkSize(size, 1); err != nil {
		return "", err
	}
	data, err := u.in.readBytes(int(size))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (u *Unpacker) unpackBytesBody(marker byte) ([]byte, error) {
	var width int
	switch marker {
	case bytes8Marker:
		width = 1
	case bytes16Marker:
		width = 2
	case bytes32Marker:
		width = 4
	default:
		return nil, newError(MalformedFormat, u.in.offset, "not a bytes marker: 0x%02X", marker)
	}
	size, err := u.readSize(width)
	if err != nil {
		return nil, err
	}
	if err := u.in.checkSize(size, 1); err != nil {
		return nil, err
	}
	return u.in.readBytes(int(size))
}
