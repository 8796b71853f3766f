// Package graph implements the dependency graph build loop: the core of
// the resolver (spec.md section 4.7). One vertex per unique library name
// (case-folded per the target platform); a BFS-based two-phase build
// (collect discovered names and edges during a read-only traversal, then
// mutate the graph between passes, since the BFS visitor must not mutate
// the graph it is traversing); and a second BFS per target to extract its
// Result.
package graph

import (
	"context"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/distr1/distri-deploy/internal/depres/finder"
	"github.com/distr1/distri-deploy/internal/depres/logsink"
	"github.com/distr1/distri-deploy/internal/depres/platform"
	"github.com/distr1/distri-deploy/internal/depres/reader"
	"github.com/distr1/distri-deploy/internal/depres/result"
	"github.com/distr1/distri-deploy/internal/depres/rpath"
)

// ReadState tracks whether a node's binary has been opened and its
// needed-libraries/rpath extracted.
type ReadState int

const (
	Unread ReadState = iota
	Read
)

// SearchState tracks whether and how a node's absolute path has been
// resolved.
type SearchState int

const (
	NotSearched SearchState = iota
	Found
	NotFound
	ExcludedFromRedistribution
)

// Node is one vertex: a unique (OS-case-folded) library name.
type Node struct {
	FileName     string
	AbsolutePath string
	RPath        rpath.RPath
	ReadState    ReadState
	SearchState  SearchState

	// RPathInheritedFrom is the vertex id of the first parent that
	// referenced this node -- the parent whose RPATH was used (on Linux)
	// to resolve it, per spec.md section 3. -1 for target vertices, which
	// have no referencing parent.
	RPathInheritedFrom int
}

// Graph is the vertex-per-library dependency graph. Not safe for
// concurrent use; one Graph serves exactly one find-dependencies call
// (spec.md section 5).
type Graph struct {
	Platform platform.Platform
	Sink     logsink.Sink

	nodes   []*Node
	index   map[string]int // folded file name -> vertex id
	adj     map[int][]int  // parent -> ordered, de-duplicated children
	adjSet  map[int]map[int]bool
	targets []int // vertex ids added via AddTarget(s), in order
}

// New returns an empty Graph for the given platform.
func New(plat platform.Platform, sink logsink.Sink) *Graph {
	return &Graph{
		Platform: plat,
		Sink:     sink,
		index:    make(map[string]int),
		adj:      make(map[int][]int),
		adjSet:   make(map[int]map[int]bool),
	}
}

// addVertex returns the existing vertex id for fileName if one exists
// (case-folded per platform), else creates a fresh node in state
// {Unread, NotSearched}.
func (g *Graph) addVertex(fileName string) int {
	key := g.Platform.FoldName(fileName)
	if id, ok := g.index[key]; ok {
		return id
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, &Node{
		FileName:           fileName,
		RPathInheritedFrom: -1,
	})
	g.index[key] = id
	return id
}

// addEdge adds a directed parent->child edge, at most once per ordered
// pair (set semantics over the out-edge container).
func (g *Graph) addEdge(parent, child int) {
	if g.adjSet[parent] == nil {
		g.adjSet[parent] = make(map[int]bool)
	}
	if g.adjSet[parent][child] {
		return
	}
	g.adjSet[parent][child] = true
	g.adj[parent] = append(g.adj[parent], child)
}

// Node returns the node for vertex id.
func (g *Graph) Node(id int) *Node { return g.nodes[id] }

// AddTarget adds a vertex for absPath, sets its absolute path, marks it
// Found (it exists -- it is the file the caller handed us) and Unread.
func (g *Graph) AddTarget(absPath string) int {
	id := g.addVertex(filepath.Base(absPath))
	n := g.nodes[id]
	n.AbsolutePath = absPath
	n.SearchState = Found
	g.targets = append(g.targets, id)
	return id
}

// AddTargets adds one vertex per path in paths, in order.
func (g *Graph) AddTargets(paths []string) []int {
	ids := make([]int, len(paths))
	for i, p := range paths {
		ids[i] = g.AddTarget(p)
	}
	return ids
}

// Targets returns the vertex ids added via AddTarget(s), in order.
func (g *Graph) Targets() []int { return g.targets }

// MarkRead records id's needed names and RPATH without opening its binary
// through the reader, for a target whose platform-detection open already
// extracted them -- keeping the "opened at most once per path" guarantee
// (spec.md section 5) for the first target of a FindDependencies(All) call.
func (g *Graph) MarkRead(id int, needed []string, rp rpath.RPath) {
	node := g.nodes[id]
	node.RPath = rp
	node.ReadState = Read
	for _, name := range needed {
		child := g.addVertex(name)
		g.addEdge(id, child)
	}
}

type pendingRead struct {
	vertex int
	names  []string
}

// FindTransitiveDependencies runs the build loop described in spec.md
// section 4.7 to completion: repeated BFS passes over the graph, each pass
// collecting (vertex, needed-names) tuples for any newly-read binary
// without mutating the graph, followed by an out-of-traversal phase that
// adds the discovered vertices and edges. The loop terminates once a pass
// discovers no new names to read, which is guaranteed to happen because
// the vertex set is bounded by the finite transitive closure of needed
// library names.
func (g *Graph) FindTransitiveDependencies(ctx context.Context, rd reader.Reader, f finder.Finder) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending, err := g.bfsPass(rd, f)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		for _, p := range pending {
			for _, name := range p.names {
				child := g.addVertex(name)
				g.addEdge(p.vertex, child)
			}
		}
	}
}

// bfsPass performs one read-only BFS pass over the graph as it stands at
// the start of the call. For each edge it examines, an unsearched child is
// resolved via the finder (or excluded, if the exclusion policy says so
// without ever touching disk). For each vertex it discovers that is
// Unread and Found, the reader opens it once and its needed names/rpath
// are recorded into the returned pending list -- the graph itself is only
// mutated after this function returns.
func (g *Graph) bfsPass(rd reader.Reader, f finder.Finder) ([]pendingRead, error) {
	visited := make(map[int]bool, len(g.nodes))
	var queue []int
	for _, t := range g.targets {
		if !visited[t] {
			visited[t] = true
			queue = append(queue, t)
		}
	}

	var pending []pendingRead
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		node := g.nodes[u]

		if node.ReadState == Unread && node.SearchState == Found {
			g.Sink.EmitDebug("read: " + node.FileName)
			needed, rp, err := g.readNode(rd, node)
			if err != nil {
				return nil, xerrors.Errorf("reading %s: %w", node.AbsolutePath, err)
			}
			node.RPath = rp
			node.ReadState = Read
			pending = append(pending, pendingRead{vertex: u, names: needed})
		}

		for _, v := range g.adj[u] {
			child := g.nodes[v]
			if child.SearchState == NotSearched {
				g.examineEdge(f, u, v)
			}
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}
	return pending, nil
}

// readNode opens node's binary with rd, returning its direct needed
// library names and its RPATH/RUNPATH, and guarantees the reader's
// transient file handle is released on every exit path.
func (g *Graph) readNode(rd reader.Reader, node *Node) (names []string, rp rpath.RPath, err error) {
	if err := rd.Open(node.AbsolutePath, g.Platform); err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := rd.Close(); err == nil {
			err = cerr
		}
	}()
	if !rd.IsExecutableOrSharedLibrary() {
		return nil, nil, nil
	}
	return rd.NeededSharedLibraries(), rd.RunPath(), nil
}

// examineEdge implements spec.md section 4.7's examine_edge step: decide
// whether child (reached via the edge parent->child) should be excluded by
// name alone, or else ask the finder to locate it using parent as the
// referring binary -- parent is "the first parent that referenced it",
// recorded on the node as RPathInheritedFrom.
func (g *Graph) examineEdge(f finder.Finder, parent, child int) {
	parentNode := g.nodes[parent]
	childNode := g.nodes[child]

	childNode.RPathInheritedFrom = parent

	if !f.ShouldDistribute(childNode.FileName) {
		childNode.SearchState = ExcludedFromRedistribution
		g.Sink.EmitVerbose(childNode.FileName + ": excluded from redistribution")
		return
	}

	referring := finder.BinaryFile{
		AbsolutePath: parentNode.AbsolutePath,
		RPath:        parentNode.RPath,
	}
	path, err := f.Find(childNode.FileName, referring)
	if err != nil {
		childNode.SearchState = NotFound
		g.Sink.EmitVerbose(childNode.FileName + ": not found")
		return
	}
	childNode.AbsolutePath = path
	childNode.SearchState = Found
	g.Sink.EmitVerbose(childNode.FileName + " -> " + path)
}

// GetResult extracts the Result for one target: a second, target-bounded
// BFS collecting vertices in discovery order (excluding the target
// itself), each contributing one entry whose status is derived from its
// search state.
func (g *Graph) GetResult(targetID int) *result.Result {
	r := result.New(g.nodes[targetID].AbsolutePath, g.Platform.OS)

	visited := map[int]bool{targetID: true}
	queue := []int{targetID}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.adj[u] {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
				g.appendEntry(r, v)
			}
		}
	}
	return r
}

func (g *Graph) appendEntry(r *result.Result, vertex int) {
	n := g.nodes[vertex]
	switch n.SearchState {
	case Found:
		r.AddFound(n.FileName, n.AbsolutePath, n.RPath)
	case NotFound:
		r.AddNotFound(n.FileName)
	case ExcludedFromRedistribution:
		r.AddExcluded(n.FileName)
	}
}

// GetResultList extracts one Result per target, in the order targetIDs is
// given.
func (g *Graph) GetResultList(targetIDs []int) *result.List {
	l := &result.List{OS: g.Platform.OS}
	for _, id := range targetIDs {
		l.Results = append(l.Results, *g.GetResult(id))
	}
	return l
}
