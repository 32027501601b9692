package blob

import (
	"github.com/pkg/errors"
)

// Index identifies an entry of a Forest. Index 0 is the sentinel.
type Index uint32

// Sentinel is the reserved entry that absorbs blobs for which there is no room. Its statistics
// are meaningless and never reported.
const Sentinel Index = 0

const (
	// DefaultMaxRuns is the default number of forest entries, excluding the sentinel.
	DefaultMaxRuns = 10000
	// DefaultMaxBlobs is the default number of simultaneous roots.
	DefaultMaxBlobs = 1000
)

type entry struct {
	parent    Index
	rootIndex Index
	rank      uint16
	stats     Stats
}

// Forest is a fixed capacity disjoint-set forest whose roots carry blob statistics. A Forest is
// not safe for concurrent use.
type Forest struct {
	entries []entry
	roots   []Index
}

// NewForest returns a Forest able to hold maxRuns entries (plus the sentinel) and maxBlobs
// roots at any one time.
func NewForest(maxRuns, maxBlobs int) (*Forest, error) {
	if maxRuns <= 0 {
		return nil, errors.Errorf("max runs must be positive, got %d", maxRuns)
	}
	if maxBlobs <= 0 {
		return nil, errors.Errorf("max blobs must be positive, got %d", maxBlobs)
	}
	f := &Forest{
		entries: make([]entry, 1, maxRuns+1),
		roots:   make([]Index, 0, maxBlobs),
	}
	f.Reset()
	return f, nil
}

// Reset empties the forest, leaving only the sentinel.
func (f *Forest) Reset() {
	f.entries = f.entries[:1]
	f.entries[Sentinel] = entry{parent: Sentinel, stats: emptyStats}
	f.roots = f.roots[:0]
}

// Len returns the number of entries in use, including the sentinel.
func (f *Forest) Len() int {
	return len(f.entries)
}

// RootCount returns the number of blobs currently registered.
func (f *Forest) RootCount() int {
	return len(f.roots)
}

// Roots returns the root registry. The slice is owned by the forest and is only valid until the
// next mutation.
func (f *Forest) Roots() []Index {
	return f.roots
}

// Stats returns the statistics stored at entry i. They describe the whole blob only when i is a
// root.
func (f *Forest) Stats(i Index) Stats {
	return f.entries[i].stats
}

// IsRoot reports whether i is the representative of its set. The sentinel is never a root.
func (f *Forest) IsRoot(i Index) bool {
	return i != Sentinel && int(i) < len(f.entries) && f.entries[i].parent == i
}

// MakeSet creates a singleton set from the run on the given row and registers it as a root. It
// returns the Sentinel when either the entry or the root capacity is exhausted.
func (f *Forest) MakeSet(run Run, row int) Index {
	if len(f.entries) >= cap(f.entries) || len(f.roots) >= cap(f.roots) {
		return Sentinel
	}
	idx := Index(len(f.entries))
	e := entry{parent: idx, rootIndex: Index(len(f.roots))}
	e.stats.init(run, row)
	f.entries = append(f.entries, e)
	f.roots = append(f.roots, idx)
	return idx
}

// Extend folds a run that does not belong to any set into the set rooted at root. Folding into
// the Sentinel is allowed and only changes the discarded sentinel statistics.
func (f *Forest) Extend(root Index, run Run, row int) {
	f.entries[root].stats.extend(run, row)
}

// FindRoot returns the representative of the set containing i. Every entry visited on the way
// is re-parented directly onto the root. Statistics are not touched: an entry's statistics were
// folded into its parent when it was linked, so they are already part of the root's.
func (f *Forest) FindRoot(i Index) Index {
	root := i
	for f.entries[root].parent != root {
		root = f.entries[root].parent
	}
	for i != root {
		next := f.entries[i].parent
		if next != root {
			f.entries[i].parent = root
		}
		i = next
	}
	return root
}

// Union links the sets rooted at s and t by rank and returns the surviving root. On equal rank
// t survives and its rank grows. Both arguments must be distinct roots other than the Sentinel.
func (f *Forest) Union(s, t Index) Index {
	sRank, tRank := f.entries[s].rank, f.entries[t].rank
	if sRank > tRank {
		f.setParent(t, s)
		return s
	}
	if sRank == tRank {
		f.entries[t].rank++
	}
	f.setParent(s, t)
	return t
}

// setParent hangs the root child under parent, folding its statistics and dropping it from the
// root registry.
func (f *Forest) setParent(child, parent Index) {
	f.entries[child].parent = parent
	f.entries[parent].stats.add(&f.entries[child].stats)
	f.removeRoot(child)
}

// removeRoot deletes i from the registry by moving the last registered root into its slot.
func (f *Forest) removeRoot(i Index) {
	slot := f.entries[i].rootIndex
	last := len(f.roots) - 1
	moved := f.roots[last]
	f.roots[slot] = moved
	f.entries[moved].rootIndex = slot
	f.roots = f.roots[:last]
}

// unionRuns joins the run a on prevRow with the overlapping run b on row.
func (f *Forest) unionRuns(prevRow int, a *LumaRun, row int, b *LumaRun) {
	switch {
	case a.Parent == Sentinel && b.Parent == Sentinel:
		// Neither run is in a set yet. If there is no room, both fold into the sentinel.
		root := f.MakeSet(a.Run, prevRow)
		f.Extend(root, b.Run, row)
		a.Parent = root
		b.Parent = root
	case a.Parent == Sentinel:
		root := f.FindRoot(b.Parent)
		f.Extend(root, a.Run, prevRow)
		a.Parent = root
		b.Parent = root
	case b.Parent == Sentinel:
		root := f.FindRoot(a.Parent)
		f.Extend(root, b.Run, row)
		a.Parent = root
		b.Parent = root
	default:
		root := f.FindRoot(a.Parent)
		if bRoot := f.FindRoot(b.Parent); bRoot != root {
			root = f.Union(root, bRoot)
		}
		a.Parent = root
		b.Parent = root
	}
}

// UnionRows joins every run of cur (on row) with every run of prev (on row-1) it shares a column
// with. Both lists must be sorted by column and non-overlapping within themselves. The sweep
// advances whichever run ends first, so the work is linear in the number of runs.
func (f *Forest) UnionRows(row int, prev, cur []LumaRun) {
	prevRow := row - 1
	ai, bi := 0, 0
	var x uint16
	for ai < len(prev) && bi < len(cur) {
		a, b := &prev[ai], &cur[bi]
		if x < a.Low {
			x = a.Low
		}
		if x < b.Low {
			x = b.Low
		}
		switch {
		case x >= a.High:
			ai++
		case x >= b.High:
			bi++
		default:
			f.unionRuns(prevRow, a, row, b)
			if a.High < b.High {
				ai++
			} else {
				bi++
			}
		}
	}
}
