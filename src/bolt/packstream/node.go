package packstream

// Node is the graph-domain composite for a labeled vertex with properties
// (spec §3, §4.4). It is serialized on the wire as a 3-field struct with
// signature 'N'.
const (
	nodeSignature = 'N' // 0x4E
	nodeArity     = 3
)

// Node mirrors a database node: identity, labels and properties.
type Node struct {
	ID         int64
	Labels     []string
	Properties map[string]interface{}
}

// WriteNode encodes a full Node value (id, labels, properties).
func (p *Packer) WriteNode(n *Node) error {
	if err := p.WriteStructHeader(nodeArity, nodeSignature); err != nil {
		return err
	}
	if err := p.WriteInt(n.ID); err != nil {
		return err
	}
	if err := p.writeStringList(n.Labels); err != nil {
		return err
	}
	return p.writeStringMap(n.Properties)
}

// WriteNodeReference always fails: the wire only carries full node values,
// never identifier-only references (spec §4.4).
func (p *Packer) WriteNodeReference(id int64) error {
	return newError(ReferenceNotSerializable, -1, "node %d requested as a reference-only write; only full values may be serialized", id)
}

func decodeNode(u *Unpacker, fieldCount int) (interface{}, error) {
	if fieldCount != nodeArity {
		return nil, newError(MalformedFormat, u.in.offset, "Node struct has %d fields, expected %d", fieldCount, nodeArity)
	}
	id, err := u.unpackInt()
	if err != nil {
		return nil, err
	}
	labels, err := u.unpackStringList()
	if err != nil {
		return nil, err
	}
	props, err := u.unpackStringMap()
	if err != nil {
		return nil, err
	}
	return &Node{ID: id, Labels: labels, Properties: props}, nil
}

func (p *Packer) writeStringList(items []string) error {
	if err := p.WriteListHeader(len(items)); err != nil {
		return err
	}
	for _, s := range items {
		if err := p.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) writeStringMap(m map[string]interface{}) error {
	if err := p.WriteMapHeader(len(m)); err != nil {
		return err
	}
	for k, v := range m {
		if err := p.WriteString(k); err != nil {
			return err
		}
		if err := p.Pack(v); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unpacker) unpackStringList() ([]string, error) {
	n, err := u.UnpackListHeader()
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		s, err := u.unpackString()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (u *Unpacker) unpackStringMap() (map[string]interface{}, error) {
	n, err := u.UnpackMapHeader()
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

// unpackMapKey reads a value expected to be a map key: it must be a
// non-null string (spec §4.4 map decoding invariants).
func (u *Unpacker) unpackMapKey() (string, error) {
	t, err := u.PeekType()
	if err != nil {
		return "", err
	}
	if t != TypeString {
		return "", newError(MalformedFormat, u.in.offset, "map key must be a string, got %s", t)
	}
	marker, err := u.readMarker()
	if err != nil {
		return "", err
	}
	return u.unpackStringBody(marker)
}

func (u *Unpacker) unpackString() (string, error) {
	marker, err := u.readMarker()
	if err != nil {
		return "", err
	}
	return u.unpackStringBody(marker)
}

func (u *Unpacker) unpackInt() (int64, error) {
	marker, err := u.readMarker()
	if err != nil {
		return 0, err
	}
	return u.unpackIntBody(marker)
}

func (u *Unpacker) unpackIntBody(marker byte) (int64, error) {
	switch {
	case marker < tinyStringBase:
		return int64(marker), nil
	case marker >= 0xF0:
		return int64(int8(marker)), nil
	case marker == int8Marker:
		return u.readInt(1)
	case marker == int16Marker:
		return u.readInt(2)
	case marker == int32Marker:
		return u.readInt(4)
	case marker == int64Marker:
		return u.readInt(8)
	default:
		return 0, newError(MalformedFormat, u.in.offset, "not an int marker: 0x%02X", marker)
	}
}
