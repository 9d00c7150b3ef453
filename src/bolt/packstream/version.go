package packstream

import "io"

// structDecoder reconstructs a domain value from a struct's already-read
// field count; it reads exactly that many values off the Unpacker.
type structDecoder func(u *Unpacker, fieldCount int) (interface{}, error)

// knownSignatures records every struct signature recognized by ANY version
// of this codec, mapped to the version that introduced it. A signature
// absent from this table is unknown to the protocol entirely
// (StructSignatureUnknown); a signature present here but not in the active
// Codec's table belongs to a later version (StructNotSupportedInThisVersion).
var knownSignatures = map[byte]uint32{
	nodeSignature:                 1,
	relationshipSignature:         1,
	unboundRelationshipSignature:  1,
	pathSignature:                 1,
	// Registered but not implemented: the temporal/point type family is a
	// version-2+ concern (spec §9's "table swap, not a rewrite" hook). Their
	// presence here lets a version-1 Unpacker tell "I've never heard of
	// this signature" apart from "I know of this signature, just not yet".
	dateSignature:          2,
	timeSignature:          2,
	localTimeSignature:     2,
	localDateTimeSignature: 2,
	dateTimeSignature:      2,
	durationSignature:      2,
	point2DSignature:       2,
	point3DSignature:       2,
}

// Codec binds a protocol version to its struct decode table (spec §4.4,
// §6); it holds no encode-side type list. It is immutable after construction and may
// be shared across goroutines; Packers and Unpackers it creates may not.
type Codec struct {
	version  uint32
	decoders map[byte]structDecoder
}

// NewCodec returns the Codec for the given protocol version. Only version 1
// is implemented.
func NewCodec(version uint32) (*Codec, error) {
	switch version {
	case 1:
		return &Codec{version: 1, decoders: version1Decoders()}, nil
	default:
		return nil, newError(StructNotSupportedInThisVersion, -1, "unsupported codec version %d", version)
	}
}

// Version1 is the default, always-available codec used by NewPacker and
// NewUnpacker when no explicit Codec is supplied.
var Version1 = &Codec{version: 1, decoders: version1Decoders()}

func version1Decoders() map[byte]structDecoder {
	return map[byte]structDecoder{
		nodeSignature:                decodeNode,
		relationshipSignature:        decodeRelationship,
		unboundRelationshipSignature: decodeUnboundRelationship,
		pathSignature:                decodePath,
	}
}

// Version reports the protocol version this codec implements.
func (c *Codec) Version() uint32 { return c.version }

// NewPacker creates a Packer bound to this codec's version, writing to w.
func (c *Codec) NewPacker(w io.Writer) *Packer {
	p := NewPacker(w)
	p.codec = c
	return p
}

// NewUnpacker creates an Unpacker bound to this codec's version, reading
// from r.
func (c *Codec) NewUnpacker(r io.Reader) *Unpacker {
	u := NewUnpacker(r)
	u.codec = c
	return u
}

// resolveStruct looks up a decoder for signature, distinguishing "unknown
// to any version" from "known to a later version" per spec §4.4.
func (c *Codec) resolveStruct(signature byte) (structDecoder, error) {
	if dec, ok := c.decoders[signature]; ok {
		return dec, nil
	}
	if minVersion, known := knownSignatures[signature]; known {
		return nil, newError(StructNotSupportedInThisVersion, -1,
			"struct signature 0x%02X requires version %d, this codec is version %d", signature, minVersion, c.version)
	}
	return nil, newError(StructSignatureUnknown, -1, "unknown struct signature 0x%02X", signature)
}
