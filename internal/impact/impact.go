// Package impact implements the Diff & Impact Engine: git-diff-derived
// changed-file/line/symbol sets, and the depth-bounded backward BFS over
// Calls/Imports/Inherits edges that computes each finding's
// affectedDependents count. The backward-BFS shape is grounded on the
// teacher's TransitiveCallers (query_graph.go): bulk-load edges, then walk
// with a plain queue, generalized here from a single edge kind (Calls) to
// the three kinds spec §4.7 names.
package impact

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/revet-dev/revet-core/internal/graph"
)

// DefaultMaxDepth is the policy depth bound spec §4.7 documents: not a
// free parameter, chosen to keep large-fanout repositories tractable.
const DefaultMaxDepth = 5

// ChangeStatus is the closed set of per-file diff outcomes.
type ChangeStatus string

const (
	Added    ChangeStatus = "Added"
	Modified ChangeStatus = "Modified"
	Deleted  ChangeStatus = "Deleted"
	Renamed  ChangeStatus = "Renamed"
)

// ChangedFile is one file's status relative to the diff base.
type ChangedFile struct {
	Path   string
	Status ChangeStatus
}

// LineRange is an inclusive, 1-based line span.
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) intersects(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
var diffFileRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)

// ComputeDiff shells out to `git diff --unified=0 --merge-base <base>`
// in root, comparing the merge base of base and HEAD against the
// working tree, and parses the changed-file set and per-file changed-line
// ranges from the unified diff's hunk headers. --unified=0 keeps the
// output to hunk headers plus changed lines only, which is all this
// engine needs; a full-patch parser like sourcegraph/go-diff would parse
// far more than that (see DESIGN.md).
func ComputeDiff(root, base string) ([]ChangedFile, map[string][]LineRange, error) {
	cmd := exec.Command("git", "diff", "--unified=0", "--merge-base", base)
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, nil, fmt.Errorf("git diff: %w: %s", err, stderr.String())
	}
	return parseUnifiedDiff(stdout.String())
}

func parseUnifiedDiff(diff string) ([]ChangedFile, map[string][]LineRange, error) {
	var files []ChangedFile
	lines := make(map[string][]LineRange)

	var currentPath string
	var currentStatus ChangeStatus
	var sawOldLines, sawNewLines bool

	flush := func() {
		if currentPath == "" {
			return
		}
		status := currentStatus
		if status == "" {
			switch {
			case !sawOldLines && sawNewLines:
				status = Added
			case sawOldLines && !sawNewLines:
				status = Deleted
			default:
				status = Modified
			}
		}
		files = append(files, ChangedFile{Path: currentPath, Status: status})
	}

	for _, line := range strings.Split(diff, "\n") {
		if m := diffFileRe.FindStringSubmatch(line); m != nil {
			flush()
			currentPath = m[2]
			currentStatus = ""
			sawOldLines, sawNewLines = false, false
			continue
		}
		if strings.HasPrefix(line, "new file mode") {
			currentStatus = Added
			continue
		}
		if strings.HasPrefix(line, "deleted file mode") {
			currentStatus = Deleted
			continue
		}
		if strings.HasPrefix(line, "rename to ") {
			currentStatus = Renamed
			continue
		}
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			oldCount := countOrOne(m[2])
			newStart, _ := strconv.Atoi(m[3])
			newCount := countOrOne(m[4])
			if oldCount > 0 {
				sawOldLines = true
			}
			if newCount > 0 {
				sawNewLines = true
				lines[currentPath] = append(lines[currentPath], LineRange{
					Start: newStart, End: newStart + newCount - 1,
				})
			}
			continue
		}
	}
	flush()

	return files, lines, nil
}

func countOrOne(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}

// ChangedSymbols returns every node whose source range intersects the
// changed-line set of its file. Added files contribute all their
// declarations (every line is "changed"); deleted files contribute none,
// since their nodes are absent from the current graph entirely.
func ChangedSymbols(g *graph.Graph, changedLines map[string][]LineRange) []*graph.Node {
	var out []*graph.Node
	for _, n := range g.Nodes() {
		ranges, ok := changedLines[n.Loc.Path]
		if !ok {
			continue
		}
		nodeRange := LineRange{Start: n.Loc.StartLine, End: n.Loc.EndLine}
		if nodeRange.End == 0 {
			nodeRange.End = nodeRange.Start
		}
		for _, r := range ranges {
			if nodeRange.intersects(r) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// SignatureChanged reports whether node's public-signature attribute
// differs from the same node id's signature in baseline. A node absent
// from baseline (new declaration) counts as changed.
func SignatureChanged(node *graph.Node, baseline *graph.Graph) bool {
	if baseline == nil {
		return true
	}
	prior := baseline.Lookup(node.ID)
	if prior == nil {
		return true
	}
	return node.Attrs["signature"] != prior.Attrs["signature"]
}

// Set maps a reachable node id to the BFS depth at which it was first
// reached (0 = one of the changed-symbol roots).
type Set map[string]int

// Compute walks Calls, Imports, and Inherits edges backwards from roots,
// bounded to maxDepth, and returns every node reached (including the
// roots at depth 0). maxDepth <= 0 falls back to DefaultMaxDepth, keeping
// the bound a policy rather than an accidental zero.
func Compute(g *graph.Graph, roots []*graph.Node, maxDepth int) Set {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	visited := make(Set, len(roots))
	type entry struct {
		id    string
		depth int
	}
	var queue []entry
	for _, r := range roots {
		if _, seen := visited[r.ID]; !seen {
			visited[r.ID] = 0
			queue = append(queue, entry{id: r.ID, depth: 0})
		}
	}

	kinds := []graph.EdgeKind{graph.EdgeCalls, graph.EdgeImports, graph.EdgeInherits}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		for _, e := range g.Incoming(cur.id, kinds...) {
			if _, seen := visited[e.Src]; seen {
				continue
			}
			visited[e.Src] = cur.depth + 1
			queue = append(queue, entry{id: e.Src, depth: cur.depth + 1})
		}
	}

	return visited
}

// AffectedDependents counts every node in set other than the roots
// (depth 0 entries), which is what a Finding's affectedDependents field
// reports (spec §4.7).
func AffectedDependents(set Set) int {
	count := 0
	for _, depth := range set {
		if depth > 0 {
			count++
		}
	}
	return count
}
