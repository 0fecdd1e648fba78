// Package depgraph orders tables for generation by their foreign-key
// dependencies (spec §4.5). Tables are grouped into Tarjan strongly
// connected components so that a true FK cycle is detected rather than
// silently mis-ordered, then flattened into sequential levels in reverse
// topological order: a table's referenced tables always finish an earlier
// level before it starts.
package depgraph

import (
	"sort"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/errs"
)

// Level is a set of tables whose rows may be generated concurrently: apart
// from members of one FK cycle, which share a level, none of them depends on
// another table in the same level.
type Level struct {
	Tables []string
}

// Plan is the ordered generation plan for a schema.
type Plan struct {
	Levels []Level
	// Cyclic holds, per table, the FK columns that are left NULL during the
	// level's pass and back-patched afterwards (spec §9's two-phase note):
	// every nullable FK whose source and target tables lie in the same
	// multi-table cycle. Each entry names the FK's first column.
	Cyclic map[string][]string
}

type edge struct {
	from, to string
	column   string
	nullable bool
}

// Build constructs the generation Plan for s. It returns a
// errs.CyclicDependencyError if a strongly connected component contains no
// nullable FK to break the cycle on (spec §4.5's fatal case).
func Build(s *ddl.Schema) (*Plan, error) {
	tables := s.Tables()
	edges := collectEdges(tables)

	adj := map[string][]string{}
	for _, e := range edges {
		if e.from == e.to {
			continue // self-reference isn't a cross-table ordering constraint
		}
		adj[e.from] = append(adj[e.from], e.to)
	}

	sccs := tarjanSCCs(s.Names(), adj)

	cyclic := map[string][]string{}
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		if !hasSelfLoopOnly(scc) {
			// multi-table SCC: needs at least one nullable FK among its
			// internal edges to break the cycle.
			member := map[string]bool{}
			for _, t := range scc {
				member[t] = true
			}
			broken := false
			for _, e := range edges {
				if member[e.from] && member[e.to] && e.nullable {
					cyclic[e.from] = append(cyclic[e.from], e.column)
					broken = true
				}
			}
			if !broken {
				return nil, &errs.CyclicDependencyError{Tables: append([]string(nil), scc...)}
			}
		}
	}

	levels := levelOrder(s.Names(), adj, sccs)
	return &Plan{Levels: levels, Cyclic: cyclic}, nil
}

func hasSelfLoopOnly(scc []string) bool { return len(scc) == 1 }

func collectEdges(tables []*ddl.TableDef) []edge {
	var out []edge
	for _, t := range tables {
		for _, fk := range t.ForeignKeys() {
			nullable := true
			for _, col := range fk.Columns {
				if c := t.ColumnByName(col); c != nil && !c.Nullable {
					nullable = false
				}
			}
			colName := ""
			if len(fk.Columns) > 0 {
				colName = fk.Columns[0]
			}
			out = append(out, edge{from: t.Name, to: fk.RefTable, column: colName, nullable: nullable})
		}
	}
	return out
}

// tarjanSCCs returns the strongly connected components of the graph
// described by adj, in an unspecified order.
func tarjanSCCs(names []string, adj map[string][]string) [][]string {
	index := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	counter := 0
	var out [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		neighbors := append([]string(nil), adj[v]...)
		sort.Strings(neighbors)
		for _, w := range neighbors {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var scc []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			out = append(out, scc)
		}
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, v := range sorted {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}
	return out
}

// levelOrder assigns each table a depth equal to one more than the deepest
// depth of any table it references (after collapsing SCCs, which all share
// the depth of their deepest member), then groups tables by depth.
func levelOrder(names []string, adj map[string][]string, sccs [][]string) []Level {
	sccOf := map[string]int{}
	for i, scc := range sccs {
		for _, t := range scc {
			sccOf[t] = i
		}
	}

	sccAdj := map[int]map[int]bool{}
	for v, neighbors := range adj {
		for _, w := range neighbors {
			if sccOf[v] == sccOf[w] {
				continue
			}
			if sccAdj[sccOf[v]] == nil {
				sccAdj[sccOf[v]] = map[int]bool{}
			}
			sccAdj[sccOf[v]][sccOf[w]] = true
		}
	}

	depth := make([]int, len(sccs))
	var compute func(i int) int
	visiting := make([]bool, len(sccs))
	memo := make([]bool, len(sccs))
	compute = func(i int) int {
		if memo[i] {
			return depth[i]
		}
		if visiting[i] {
			return depth[i] // guards against residual cross-SCC cycles
		}
		visiting[i] = true
		d := 0
		for j := range sccAdj[i] {
			if cd := compute(j) + 1; cd > d {
				d = cd
			}
		}
		depth[i] = d
		visiting[i] = false
		memo[i] = true
		return d
	}
	for i := range sccs {
		compute(i)
	}

	byDepth := map[int][]string{}
	maxDepth := 0
	for i, scc := range sccs {
		d := depth[i]
		if d > maxDepth {
			maxDepth = d
		}
		byDepth[d] = append(byDepth[d], scc...)
	}

	var levels []Level
	for d := 0; d <= maxDepth; d++ {
		tabs := byDepth[d]
		sort.Strings(tabs)
		if len(tabs) > 0 {
			levels = append(levels, Level{Tables: tabs})
		}
	}
	return levels
}
