package packstream

// Path is the traversal-order composite of spec §3/§4.4: a deduplicated
// list of nodes, a deduplicated list of unbound relationships, and a signed
// index array recovering the original traversal.
const (
	pathSignature = 'P' // 0x50
	pathArity     = 3
)

// Path mirrors a database path: its deduplicated node/relationship lists
// and the traversal-order index array described in spec §4.4.
type Path struct {
	Nodes   []*Node
	Rels    []*UnboundRelationship
	Indices []int64
}

// PathStep is one hop of the traversal WritePath encodes: the relationship
// traversed and the node it leads to. The relationship's StartID/EndID
// determine whether the hop is forward or backward relative to the
// previous node.
type PathStep struct {
	Rel  *Relationship
	Node *Node
}

// DeletionStatus reports whether an entity has been deleted within the
// current transaction, by another transaction, or not at all (spec §6).
type DeletionStatus int

const (
	NotDeleted DeletionStatus = iota
	DeletedInThisTransaction
	DeletedByOtherTransaction
)

// PropertySupplier is the inbound dependency the codec asks for an
// entity's current properties while serializing a path (spec §6). A nil
// supplier makes WritePath use each relationship's own Properties field
// unconditionally.
type PropertySupplier interface {
	RelationshipProperties(relationshipID int64) (map[string]interface{}, DeletionStatus, error)
}

// idIndex is an insertion-ordered int64-keyed index, reset per path (spec
// §4.4/§9): a parallel key/value array rather than a general hash map, so
// 64-bit entity ids are never boxed.
type idIndex struct {
	keys []int64
	vals []int32
}

func (m *idIndex) lookup(key int64) (int32, bool) {
	for i, k := range m.keys {
		if k == key {
			return m.vals[i], true
		}
	}
	return 0, false
}

func (m *idIndex) insert(key int64, val int32) {
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, val)
}

func (m *idIndex) len() int { return len(m.keys) }

// WritePath encodes the traversal (start, steps...) as a Path struct,
// deduplicating nodes and relationships and emitting the signed index
// array described in spec §4.4. The scratch maps are local to this call
// and discarded afterward.
func (p *Packer) WritePath(start *Node, steps []PathStep, supplier PropertySupplier) error {
	nodeIdx := &idIndex{}
	relIdx := &idIndex{}
	var uniqueNodes []*Node
	var uniqueRels []*UnboundRelationship

	addNode := func(n *Node) int32 {
		if i, ok := nodeIdx.lookup(n.ID); ok {
			return i
		}
		idx := int32(nodeIdx.len())
		nodeIdx.insert(n.ID, idx)
		uniqueNodes = append(uniqueNodes, n)
		return idx
	}
	addRel := func(r *Relationship) (int32, error) {
		if i, ok := relIdx.lookup(r.ID); ok {
			return i, nil
		}
		idx := int32(relIdx.len()) + 1 // 1-based
		relIdx.insert(r.ID, idx)

		props := r.Properties
		if supplier != nil {
			fetched, status, err := supplier.RelationshipProperties(r.ID)
			switch status {
			case DeletedInThisTransaction:
				props = map[string]interface{}{}
			case DeletedByOtherTransaction:
				return 0, newError(EntityReadFailure, -1, "relationship %d deleted by another transaction", r.ID)
			default:
				if err != nil {
					return 0, newError(EntityReadFailure, -1, "failed to read properties for relationship %d: %v", r.ID, err)
				}
				props = fetched
			}
		}
		uniqueRels = append(uniqueRels, &UnboundRelationship{ID: r.ID, Type: r.Type, Properties: props})
		return idx, nil
	}

	addNode(start)

	indices := make([]int64, 0, 2*len(steps))
	prev := start
	for _, step := range steps {
		relIndex, err := addRel(step.Rel)
		if err != nil {
			return err
		}
		nodeIndex := addNode(step.Node)

		signedRelIndex := int64(relIndex)
		if step.Rel.StartID != prev.ID {
			signedRelIndex = -signedRelIndex
		}
		indices = append(indices, signedRelIndex, int64(nodeIndex))
		prev = step.Node
	}

	if err := p.WriteStructHeader(pathArity, pathSignature); err != nil {
		return err
	}
	if err := p.writeNodeList(uniqueNodes); err != nil {
		return err
	}
	if err := p.writeUnboundRelList(uniqueRels); err != nil {
		return err
	}
	return p.writeIntList(indices)
}

// WritePathReference always fails: see WriteNodeReference.
func (p *Packer) WritePathReference(id int64) error {
	return newError(ReferenceNotSerializable, -1, "path %d requested as a reference-only write; only full values may be serialized", id)
}

func (p *Packer) writeNodeList(nodes []*Node) error {
	if err := p.WriteListHeader(len(nodes)); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := p.WriteNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) writeUnboundRelList(rels []*UnboundRelationship) error {
	if err := p.WriteListHeader(len(rels)); err != nil {
		return err
	}
	for _, r := range rels {
		if err := p.writeUnboundRelationship(r); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packer) writeIntList(vals []int64) error {
	if err := p.WriteListHeader(len(vals)); err != nil {
		return err
	}
	for _, v := range vals {
		if err := p.WriteInt(v); err != nil {
			return err
		}
	}
	return nil
}

func decodePath(u *Unpacker, fieldCount int) (interface{}, error) {
	if fieldCount != pathArity {
		return nil, newError(MalformedFormat, u.in.offset, "Path struct has %d fields, expected %d", fieldCount, pathArity)
	}

	nodes, err := u.unpackNodeList()
	if err != nil {
		return nil, err
	}
	rels, err := u.unpackUnboundRelList()
	if err != nil {
		return nil, err
	}
	indices, err := u.unpackIntList()
	if err != nil {
		return nil, err
	}

	if len(indices)%2 != 0 {
		return nil, newError(MalformedFormat, u.in.offset, "path indices array has odd length %d", len(indices))
	}
	for i := 0; i < len(indices); i += 2 {
		relMag := indices[i]
		if relMag < 0 {
			relMag = -relMag
		}
		if relMag == 0 || relMag > int64(len(rels)) {
			return nil, newError(MalformedFormat, u.in.offset, "path relationship index %d out of range [1,%d]", indices[i], len(rels))
		}
		nodeIdx := indices[i+1]
		if nodeIdx < 0 || nodeIdx >= int64(len(nodes)) {
			return nil, newError(MalformedFormat, u.in.offset, "path node index %d out of range [0,%d)", nodeIdx, len(nodes))
		}
	}

	return &Path{Nodes: nodes, Rels: rels, Indices: indices}, nil
}

func (u *Unpacker) unpackNodeList() ([]*Node, error) {
	n, err := u.UnpackListHeader()
	if err != nil {
		return nil, err
	}
	out := make([]*Node, n)
	for i := 0; i < n; i++ {
		v, err := u.UnpackOne()
		if err != nil {
			return nil, err
		}
		node, ok := v.(*Node)
		if !ok {
			return nil, newError(MalformedFormat, u.in.offset, "path unique_nodes element is %T, expected Node", v)
		}
		out[i] = node
	}
	return out, nil
}

func (u *Unpacker) unpackUnboundRelList() ([]*UnboundRelationship, error) {
	n, err := u.UnpackListHeader()
	if err != nil {
		return nil, err
	}
	out := make([]*UnboundRelationship, n)
	for i := 0; i < n; i++ {
		v, err := u.UnpackOne()
		if err != nil {
			return nil, err
		}
		rel, ok := v.(*UnboundRelationship)
		if !ok {
			return nil, newError(MalformedFormat, u.in.offset, "path unique_rels element is %T, expected UnboundRelationship", v)
		}
		out[i] = rel
	}
	return out, nil
}

func (u *Unpacker) unpackIntList() ([]int64, error) {
	n, err := u.UnpackListHeader()
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		v, err := u.unpackInt()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Steps reconstructs the original (node, relationship, direction)
// traversal from a decoded Path, walking the index array with a running
// "previous node" pointer starting at Nodes[0] (spec §4.4).
func (path *Path) Steps() ([]PathStep, error) {
	if len(path.Indices) == 0 {
		return nil, nil
	}
	if len(path.Nodes) == 0 {
		return nil, newError(MalformedFormat, -1, "non-empty path indices with no nodes")
	}

	steps := make([]PathStep, 0, len(path.Indices)/2)
	prev := path.Nodes[0]
	for i := 0; i < len(path.Indices); i += 2 {
		relSigned := path.Indices[i]
		nodeIdx := path.Indices[i+1]

		forward := relSigned > 0
		relMag := relSigned
		if !forward {
			relMag = -relMag
		}
		unbound := path.Rels[relMag-1]
		next := path.Nodes[nodeIdx]

		var rel *Relationship
		if forward {
			rel = &Relationship{ID: unbound.ID, StartID: prev.ID, EndID: next.ID, Type: unbound.Type, Properties: unbound.Properties}
		} else {
			rel = &Relationship{ID: unbound.ID, StartID: next.ID, EndID: prev.ID, Type: unbound.Type, Properties: unbound.Properties}
		}
		steps = append(steps, PathStep{Rel: rel, Node: next})
		prev = next
	}
	return steps, nil
}
