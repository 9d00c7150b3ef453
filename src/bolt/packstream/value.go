package packstream

import (
	"bytes"
	"fmt"
	"reflect"
)

// ArrayKind hints at the element type of a homogeneous typed array passed
// to BeginArray, so a caller streaming from a value visitor doesn't need to
// box each element to decide how to pack it. PackStream itself has no
// dedicated typed-array wire representation distinct from List; the kind is
// a bridge-layer convenience only.
type ArrayKind int

const (
	ArrayKindInt ArrayKind = iota
	ArrayKindFloat
	ArrayKindString
	ArrayKindBool
)

// ValueWriter is the capability-set interface a caller streams values
// through without materializing an intermediate tree (spec §4.3). Packer
// implements it directly.
type ValueWriter interface {
	WriteNull() error
	WriteBool(bool) error
	WriteInt(int64) error
	WriteFloat(float64) error
	WriteBytes([]byte) error
	WriteString(string) error
	BeginList(n int) error
	EndList() error
	BeginMap(n int) error
	EndMap() error
	BeginArray(n int, kind ArrayKind) error
	EndArray() error
	WriteNode(*Node) error
	WriteRelationship(*Relationship) error
	WritePath(start *Node, steps []PathStep, supplier PropertySupplier) error
	WriteNodeReference(id int64) error
	WriteRelationshipReference(id int64) error
	WritePathReference(id int64) error
}

var _ ValueWriter = (*Packer)(nil)

// BeginList is an alias for WriteListHeader under the ValueWriter name.
func (p *Packer) BeginList(n int) error { return p.WriteListHeader(n) }

// EndList is advisory only: PackStream containers are length-prefixed, so
// there is nothing left to verify once BeginList has been written.
func (p *Packer) EndList() error { return nil }

// BeginMap is an alias for WriteMapHeader under the ValueWriter name.
func (p *Packer) BeginMap(n int) error { return p.WriteMapHeader(n) }

// EndMap is advisory only; see EndList.
func (p *Packer) EndMap() error { return nil }

// BeginArray writes a List header; kind exists only to help the caller
// stream already-typed elements without boxing, not to change the wire
// encoding.
func (p *Packer) BeginArray(n int, kind ArrayKind) error { return p.WriteListHeader(n) }

// EndArray is advisory only; see EndList.
func (p *Packer) EndArray() error { return nil }

// EndOfStream is the sentinel value UnpackOne returns when it encounters
// the distinguished end-of-stream marker (spec §4.2, §6).
type EndOfStream struct{}

// Pack serializes value using this Packer's dynamic type dispatch. It is
// the entry point callers that don't want to drive the ValueWriter
// interface by hand use; src/bolt/messaging uses it for message fields.
func (p *Packer) Pack(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return p.WriteNull()
	case bool:
		return p.WriteBool(v)
	case int:
		return p.WriteInt(int64(v))
	case int8:
		return p.WriteInt(int64(v))
	case int16:
		return p.WriteInt(int64(v))
	case int32:
		return p.WriteInt(int64(v))
	case int64:
		return p.WriteInt(v)
	case float32:
		return p.WriteFloat(float64(v))
	case float64:
		return p.WriteFloat(v)
	case []byte:
		return p.WriteBytes(v)
	case string:
		return p.WriteString(v)
	case map[string]interface{}:
		return p.writeStringMap(v)
	case []interface{}:
		return p.packList(v)
	case *Node:
		return p.WriteNode(v)
	case *Relationship:
		return p.WriteRelationship(v)
	case *UnboundRelationship:
		return p.writeUnboundRelationship(v)
	case *Path:
		return p.packPath(v)
	case Date, Time, LocalTime, LocalDateTime, DateTime, Duration, Point2D, Point3D:
		return newError(TypeNotSupportedInThisVersion, -1, "%T is not supported by codec version %d", v, p.codec.Version())
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice {
			return p.packReflectSlice(rv)
		}
		return newError(MalformedFormat, -1, "cannot pack type %T", v)
	}
}

func (p *Packer) packList(items []interface{}) error {
	if err := p.WriteListHeader(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := p.Pack(item); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) packReflectSlice(rv reflect.Value) error {
	n := rv.Len()
	if err := p.WriteListHeader(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := p.Pack(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// packPath encodes an already-built Path value (its nodes/rels/indices are
// used as-is); use WritePath instead to derive a Path from a live
// traversal.
func (p *Packer) packPath(path *Path) error {
	if err := p.WriteStructHeader(pathArity, pathSignature); err != nil {
		return err
	}
	if err := p.writeNodeList(path.Nodes); err != nil {
		return err
	}
	if err := p.writeUnboundRelList(path.Rels); err != nil {
		return err
	}
	return p.writeIntList(path.Indices)
}

// UnpackOne reads and returns the next whole value (spec §4.3, §6). It may
// return an EndOfStream sentinel.
func (u *Unpacker) UnpackOne() (interface{}, error) {
	marker, err := u.readMarker()
	if err != nil {
		return nil, err
	}
	t := classifyMarker(marker)
	switch t {
	case TypeNull:
		return nil, nil
	case TypeBool:
		return marker == trueMarker, nil
	case TypeInt:
		return u.unpackIntBody(marker)
	case TypeFloat:
		return u.in.readFloat64()
	case TypeBytes:
		return u.unpackBytesBody(marker)
	case TypeString:
		return u.unpackStringBody(marker)
	case TypeList:
		return u.unpackListBody(marker)
	case TypeMap:
		return u.unpackMapBody(marker)
	case TypeStruct:
		return u.unpackStructBody(marker)
	case TypeEndOfStream:
		return EndOfStream{}, nil
	default:
		return nil, newError(MalformedFormat, u.in.offset, "unknown PackStream marker 0x%02X", marker)
	}
}

func (u *Unpacker) unpackListBody(marker byte) (interface{}, error) {
	n, err := u.readListHeaderBody(marker)
	if err != nil {
		return nil, err
	}
	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		v, err := u.UnpackOne()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (u *Unpacker) unpackMapBody(marker byte) (interface{}, error) {
	n, err := u.readMapHeaderBody(marker)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, n)
	for i := 0; i < n; i++ {
		key, err := u.unpackMapKey()
		if err != nil {
			return nil, err
		}
		if _, dup := out[key]; dup {
			return nil, newError(MalformedFormat, u.in.offset, "duplicate map key %q", key)
		}
		val, err := u.UnpackOne()
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func (u *Unpacker) unpackStructBody(marker byte) (interface{}, error) {
	size, signature, err := u.readStructHeaderBody(marker)
	if err != nil {
		return nil, err
	}
	decoder, err := u.codec.resolveStruct(signature)
	if err != nil {
		return nil, err
	}
	return decoder(u, size)
}

// Pack is a package-level convenience that serializes value into a new
// byte slice using Version1.
func Pack(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewPacker(&buf).Pack(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unpack is a package-level convenience that decodes the next value from
// data using Version1.
func Unpack(data []byte) (interface{}, error) {
	return NewUnpacker(bytes.NewReader(data)).UnpackOne()
}

func init() {
	// Sanity pass over the knownSignatures table. Map keys are unique, so
	// this loop never panics; a signature constant repeated in the table's
	// literal is already rejected at compile time.
	seen := map[byte]bool{}
	for sig := range knownSignatures {
		if seen[sig] {
			panic(fmt.Sprintf("packstream: duplicate struct signature registration 0x%02X", sig))
		}
		seen[sig] = true
	}
}
