package packstream

// Relationship and UnboundRelationship are the other graph-domain
// composites of spec §3/§4.4. A Relationship carries its endpoint node ids;
// an UnboundRelationship (used inside Path, where endpoints are recovered
// from traversal order) does not.
const (
	relationshipSignature        = 'R' // 0x52
	relationshipArity            = 5
	unboundRelationshipSignature = 'r' // 0x72
	unboundRelationshipArity     = 3
)

// Relationship mirrors a database relationship with both endpoint ids.
type Relationship struct {
	ID         int64
	StartID    int64
	EndID      int64
	Type       string
	Properties map[string]interface{}
}

// UnboundRelationship mirrors a relationship without endpoint ids, as
// carried inside a Path.
type UnboundRelationship struct {
	ID         int64
	Type       string
	Properties map[string]interface{}
}

// WriteRelationship encodes a full Relationship value.
func (p *Packer) WriteRelationship(r *Relationship) error {
	if err := p.WriteStructHeader(relationshipArity, relationshipSignature); err != nil {
		return err
	}
	for _, id := range []int64{r.ID, r.StartID, r.EndID} {
		if err := p.WriteInt(id); err != nil {
			return err
		}
	}
	if err := p.WriteString(r.Type); err != nil {
		return err
	}
	return p.writeStringMap(r.Properties)
}

// WriteRelationshipReference always fails: see WriteNodeReference.
func (p *Packer) WriteRelationshipReference(id int64) error {
	return newError(ReferenceNotSerializable, -1, "relationship %d requested as a reference-only write; only full values may be serialized", id)
}

// writeUnboundRelationship encodes r without its endpoint ids, as used by
// WritePath for each relationship in a path's unique-relationships list.
func (p *Packer) writeUnboundRelationship(r *UnboundRelationship) error {
	if err := p.WriteStructHeader(unboundRelationshipArity, unboundRelationshipSignature); err != nil {
		return err
	}
	if err := p.WriteInt(r.ID); err != nil {
		return err
	}
	if err := p.WriteString(r.Type); err != nil {
		return err
	}
	return p.writeStringMap(r.Properties)
}

func decodeRelationship(u *Unpacker, fieldCount int) (interface{}, error) {
	if fieldCount != relationshipArity {
		return nil, newError(MalformedFormat, u.in.offset, "Relationship struct has %d fields, expected %d", fieldCount, relationshipArity)
	}
	id, err := u.unpackInt()
	if err != nil {
		return nil, err
	}
	startID, err := u.unpackInt()
	if err != nil {
		return nil, err
	}
	endID, err := u.unpackInt()
	if err != nil {
		return nil, err
	}
	typ, err := u.unpackString()
	if err != nil {
		return nil, err
	}
	props, err := u.unpackStringMap()
	if err != nil {
		return nil, err
	}
	return &Relationship{ID: id, StartID: startID, EndID: endID, Type: typ, Properties: props}, nil
}

func decodeUnboundRelationship(u *Unpacker, fieldCount int) (interface{}, error) {
	if fieldCount != unboundRelationshipArity {
		return nil, newError(MalformedFormat, u.in.offset, "UnboundRelationship struct has %d fields, expected %d", fieldCount, unboundRelationshipArity)
	}
	id, err := u.unpackInt()
	if err != nil {
		return nil, err
	}
	typ, err := u.unpackString()
	if err != nil {
		return nil, err
	}
	props, err := u.unpackStringMap()
	if err != nil {
		return nil, err
	}
	return &UnboundRelationship{ID: id, Type: typ, Properties: props}, nil
}
