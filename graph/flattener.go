package graph

import "github.com/poiesic/indexit/core"

// Flattener reduces a graph of knowledge objects to a deduplicated list of
// every reachable object, including the root. It is pure and performs no
// I/O; all traversal state is scoped to a single call, so a Flattener is
// safe for concurrent use.
type Flattener struct{}

// NewFlattener creates a new Flattener.
func NewFlattener() *Flattener {
	return &Flattener{}
}

// visitKey identifies one traversal edge: container object, field name,
// contained object. The same child reached under a different container or
// field is a new edge and may re-expand; seeing the identical edge again
// means a cycle, and that branch contributes nothing. Re-expansion can redo
// traversal work but never duplicates output, since emission is deduplicated
// by object id.
type visitKey struct {
	container core.ID
	field     string
	child     core.ID
}

type flattenState struct {
	visited map[visitKey]struct{}
	emitted map[core.ID]struct{}
}

func newFlattenState() *flattenState {
	return &flattenState{
		visited: make(map[visitKey]struct{}),
		emitted: make(map[core.ID]struct{}),
	}
}

// Flatten returns every object reachable from root exactly once, root
// included. The result is deterministic for a fixed graph: fields are walked
// in declared order, sequence elements in order, and an object is emitted
// after the objects reachable through its fields. Beyond that the exact
// emission order is unspecified.
//
// Malformed graphs (field values that are structurally inconsistent) are a
// caller precondition, not a handled error.
func (f *Flattener) Flatten(root *core.KnowledgeObject) []*core.KnowledgeObject {
	if root == nil {
		return nil
	}
	return f.visit(root, newFlattenState())
}

// FlattenAll flattens several roots into one deduplicated list. Objects
// reachable from more than one root are emitted once, on their first
// encounter.
func (f *Flattener) FlattenAll(roots []*core.KnowledgeObject) []*core.KnowledgeObject {
	state := newFlattenState()
	var out []*core.KnowledgeObject
	for _, root := range roots {
		if root == nil {
			continue
		}
		out = append(out, f.visit(root, state)...)
	}
	return out
}

func (f *Flattener) visit(obj *core.KnowledgeObject, state *flattenState) []*core.KnowledgeObject {
	var out []*core.KnowledgeObject
	for _, field := range obj.Fields {
		for _, child := range core.ChildObjects(field.Value) {
			key := visitKey{container: obj.Id, field: field.Name, child: child.Id}
			if _, seen := state.visited[key]; seen {
				continue
			}
			state.visited[key] = struct{}{}
			out = append(out, f.visit(child, state)...)
		}
	}
	if _, done := state.emitted[obj.Id]; !done {
		state.emitted[obj.Id] = struct{}{}
		out = append(out, obj)
	}
	return out
}
