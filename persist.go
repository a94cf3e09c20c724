// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package robdd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// persistedNode is one row of the JSON dump format (spec §6 "persistence
// formats"): id 0/1 are always the constants and never appear as a row.
type persistedNode struct {
	ID   int `json:"id"`
	Var  int `json:"var"`
	Low  int `json:"low"`
	High int `json:"high"`
}

// persistedBDD is the JSON document produced by DumpJSON / consumed by
// LoadJSON (spec §6: "a JSON format carrying {version, variable_order,
// nodes:..., roots:...}"). VariableOrder[level] names the variable sitting
// at that level at dump time, so LoadJSON can restore the exact var_levels
// a fresh or differently-ordered manager wouldn't otherwise have (spec §8
// round-trip law).
type persistedBDD struct {
	Format        string          `json:"format"`
	Version       string          `json:"version"` // the manager's uuid at dump time
	Varnum        int             `json:"varnum"`
	VariableOrder []int           `json:"variable_order"`
	Roots         []int           `json:"roots"`
	Nodes         []persistedNode `json:"nodes"`
}

const persistSchema = `{
  "type": "object",
  "required": ["format", "varnum", "roots", "nodes"],
  "properties": {
    "format": {"type": "string"},
    "version": {"type": "string"},
    "varnum": {"type": "integer", "minimum": 1},
    "variable_order": {"type": "array", "items": {"type": "integer"}},
    "roots": {"type": "array", "items": {"type": "integer"}},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "var", "low", "high"],
        "properties": {
          "id":   {"type": "integer"},
          "var":  {"type": "integer"},
          "low":  {"type": "integer"},
          "high": {"type": "integer"}
        }
      }
    }
  }
}`

// DumpJSON writes a JSON description of the nodes reachable from roots (or
// of the whole live node table if roots is empty) to w, in the order
// Allnodes visits them. Ids 0 and 1 name the constants false and true; the
// node at table index n has id n+1, and a negative id denotes the
// complement of the node at its absolute value (spec §6 "edges are
// represented as signed node indices").
func (m *Manager) DumpJSON(w io.Writer, roots ...Handle) error {
	for _, h := range roots {
		if err := m.checkHandle(h); err != nil {
			return err
		}
	}
	doc := persistedBDD{
		Format:        "robdd/v1",
		Version:       m.id.String(),
		Varnum:        int(m.varnum),
		VariableOrder: make([]int, m.varnum),
		Roots:         []int{},
		Nodes:         []persistedNode{},
	}
	for lvl := int32(0); lvl < m.varnum; lvl++ {
		doc.VariableOrder[lvl] = int(m.level2var[lvl])
	}
	for _, h := range roots {
		doc.Roots = append(doc.Roots, encodedEdge(h.e))
	}
	err := m.Allnodes(func(id, level, low, high int) error {
		doc.Nodes = append(doc.Nodes, persistedNode{
			ID:   id + 1,
			Var:  int(m.level2var[level]),
			Low:  encodedEdge(edge(low)),
			High: encodedEdge(edge(high)),
		})
		return nil
	}, roots...)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func encodedEdge(e edge) int {
	if e.isConstant() {
		return int(e) // 0 is false, 1 is true
	}
	id := int(e.node()) + 1
	if e.comp() {
		return -id
	}
	return id
}

func decodeEdge(v int) edge {
	switch {
	case v == 0 || v == 1:
		return edge(v)
	case v < 0:
		return mkedge(int32(-v-1), true)
	}
	return mkedge(int32(v-1), false)
}

// LoadJSON reads a document produced by DumpJSON, validates it against the
// package's JSON schema before touching the manager's node table (spec §7:
// "malformed persistence input is rejected before any node is allocated"),
// restores the dumped variable_order via permuteLevels so var_levels match
// the manager that produced the dump regardless of m's starting order (spec
// §8 round-trip law), and returns the Handles corresponding to doc.Roots,
// rebuilt through the ordinary hash-consing path so the loaded BDD is
// folded into m's existing unique table rather than appended verbatim.
func (m *Manager) LoadJSON(r io.Reader) ([]Handle, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading persisted BDD: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(persistSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validating persisted BDD: %w", err)
	}
	if !result.Valid() {
		return nil, m.errorf(ErrInvalidInput, "malformed persisted BDD: %v", result.Errors())
	}

	var doc persistedBDD
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding persisted BDD: %w", err)
	}
	if doc.Varnum > int(m.varnum) {
		if err := m.SetVarnum(doc.Varnum); err != nil {
			return nil, err
		}
	}
	if len(doc.VariableOrder) > 0 {
		if len(doc.VariableOrder) != doc.Varnum {
			return nil, m.errorf(ErrInvalidInput, "variable_order length (%d) does not match varnum (%d)", len(doc.VariableOrder), doc.Varnum)
		}
		order := make([]int32, len(doc.VariableOrder))
		for i, v := range doc.VariableOrder {
			order[i] = int32(v)
		}
		if err := m.permuteLevels(order); err != nil {
			return nil, err
		}
	}

	byID := make(map[int]edge, len(doc.Nodes)+2)
	byID[0] = falseEdge
	byID[1] = trueEdge

	var resolve func(id int) (edge, error)
	visiting := make(map[int]bool)
	byRow := make(map[int]persistedNode, len(doc.Nodes))
	for _, n := range doc.Nodes {
		byRow[n.ID] = n
	}
	resolve = func(id int) (edge, error) {
		absID := id
		comp := false
		if absID < 0 {
			absID, comp = -absID, true
		}
		canon, ok := byID[absID]
		if !ok {
			if visiting[absID] {
				return 0, m.errorf(ErrInvalidInput, "cycle in persisted BDD at node %d", absID)
			}
			row, ok := byRow[absID]
			if !ok {
				return 0, m.errorf(ErrInvalidInput, "dangling node reference %d", absID)
			}
			visiting[absID] = true
			low, err := resolve(row.Low)
			if err != nil {
				return 0, err
			}
			high, err := resolve(row.High)
			if err != nil {
				return 0, err
			}
			delete(visiting, absID)
			if row.Var < 0 || row.Var >= int(m.varnum) {
				return 0, m.errorf(ErrInvalidInput, "variable %d out of range in persisted BDD", row.Var)
			}
			canon, err = m.findOrAdd(m.var2level[row.Var], low, high)
			if err != nil {
				return 0, err
			}
			byID[absID] = canon
		}
		if comp {
			return canon.negate(), nil
		}
		return canon, nil
	}

	roots := make([]Handle, len(doc.Roots))
	for k, id := range doc.Roots {
		e, err := resolve(id)
		if err != nil {
			return nil, err
		}
		roots[k] = m.retnode(e)
	}
	return roots, nil
}

// Print writes a line per node reachable from roots (or from every live
// node if roots is empty) to os.Stdout, grounded on the teacher's
// stdio.go Print.
func (m *Manager) Print(roots ...Handle) error {
	return m.fprint(os.Stdout, roots...)
}

func (m *Manager) fprint(w io.Writer, roots ...Handle) error {
	if len(roots) == 1 {
		if roots[0].e == falseEdge {
			fmt.Fprintln(w, "False")
			return nil
		}
		if roots[0].e == trueEdge {
			fmt.Fprintln(w, "True")
			return nil
		}
	}
	return m.Allnodes(func(id, level, low, high int) error {
		if id > 0 {
			fmt.Fprintf(w, "%d\t[%d]\t? %d : %d\n", id, level, high, low)
		}
		return nil
	}, roots...)
}

// PrintDot writes a GraphViz/DOT description of the BDD rooted at roots (or
// of the whole live table if roots is empty) to filename ("-" for stdout).
func (m *Manager) PrintDot(filename string, roots ...Handle) error {
	var out *os.File
	if filename == "-" {
		out = os.Stdout
	} else {
		f, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, `1 [shape=box, label="1", style=filled, height=0.3, width=0.3];`)
	err := m.Allnodes(func(id, level, low, high int) error {
		if id <= 1 {
			return nil
		}
		fmt.Fprintf(w, "%d [label=\"%d\"];\n", id, level)
		if low != 0 {
			fmt.Fprintf(w, "%d -> %d [style=dotted];\n", id, abs(low))
		}
		if high != 0 {
			fmt.Fprintf(w, "%d -> %d [style=filled];\n", id, abs(high))
		}
		return nil
	}, roots...)
	if err != nil {
		w.Flush()
		return err
	}
	fmt.Fprintln(w, "}")
	return w.Flush()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// textFormatTag identifies the textual dump format (spec §6: a second,
// distinct persistence format, "node_id level low_id low_comp high_id
// high_comp lines terminated by a roots line" with a header of variable
// names/levels).
const textFormatTag = "robdd-text/v1"

// Dump writes the textual persistence format: a header naming the format
// and variable order, one line per node reachable from roots (or every
// live node if roots is empty), and a trailing roots line. Unlike DumpJSON,
// this format is meant to be read back by Load into any manager, not just
// reconstructed through a schema-validated document.
func (m *Manager) Dump(w io.Writer, roots ...Handle) error {
	for _, h := range roots {
		if err := m.checkHandle(h); err != nil {
			return err
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, textFormatTag)
	fmt.Fprintf(bw, "varnum %d\n", m.varnum)
	for lvl := int32(0); lvl < m.varnum; lvl++ {
		v := m.level2var[lvl]
		name := m.varnames[v]
		if name == "" {
			name = fmt.Sprintf("var%d", v)
		}
		fmt.Fprintf(bw, "%d %d %s\n", lvl, v, name)
	}

	var lines []string
	err := m.Allnodes(func(id, level, low, high int) error {
		lowID, lowComp := encodedEdge(edge(low)), 0
		if lowID < 0 {
			lowID, lowComp = -lowID, 1
		}
		highID, highComp := encodedEdge(edge(high)), 0
		if highID < 0 {
			highID, highComp = -highID, 1
		}
		lines = append(lines, fmt.Sprintf("%d %d %d %d %d %d", id+1, level, lowID, lowComp, highID, highComp))
		return nil
	}, roots...)
	if err != nil {
		return err
	}
	fmt.Fprintf(bw, "nodes %d\n", len(lines))
	for _, l := range lines {
		fmt.Fprintln(bw, l)
	}

	fmt.Fprint(bw, "roots")
	for _, h := range roots {
		fmt.Fprintf(bw, " %d", encodedEdge(h.e))
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

// Load reads a document produced by Dump, declares any variable names it
// introduces, restores the dumped level assignment via permuteLevels, and
// returns the Handles named by the trailing roots line, resolved through
// the ordinary hash-consing path like LoadJSON.
func (m *Manager) Load(r io.Reader) ([]Handle, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, m.errorf(ErrInvalidInput, "empty textual BDD dump")
	}
	if tag := strings.TrimSpace(sc.Text()); tag != textFormatTag {
		return nil, m.errorf(ErrInvalidInput, "unrecognized textual BDD format %q", tag)
	}

	if !sc.Scan() {
		return nil, m.errorf(ErrInvalidInput, "missing varnum line")
	}
	var varnum int
	if _, err := fmt.Sscanf(sc.Text(), "varnum %d", &varnum); err != nil {
		return nil, m.errorf(ErrInvalidInput, "bad varnum line: %v", err)
	}

	order := make([]int32, varnum)
	names := make([]string, varnum)
	for lvl := 0; lvl < varnum; lvl++ {
		if !sc.Scan() {
			return nil, m.errorf(ErrInvalidInput, "truncated variable header")
		}
		var l, v int
		var name string
		if _, err := fmt.Sscanf(sc.Text(), "%d %d %s", &l, &v, &name); err != nil {
			return nil, m.errorf(ErrInvalidInput, "bad variable header line: %v", err)
		}
		if l != lvl {
			return nil, m.errorf(ErrInvalidInput, "variable header out of order at level %d", lvl)
		}
		if v < 0 || v >= varnum {
			return nil, m.errorf(ErrInvalidInput, "variable %d out of range in header", v)
		}
		order[lvl] = int32(v)
		names[v] = name
	}

	if varnum > int(m.varnum) {
		if err := m.SetVarnum(varnum); err != nil {
			return nil, err
		}
	}
	for v, name := range names {
		if v < len(m.varnames) && m.varnames[v] == "" {
			m.varnames[v] = name
		}
	}
	if err := m.permuteLevels(order); err != nil {
		return nil, err
	}

	if !sc.Scan() {
		return nil, m.errorf(ErrInvalidInput, "missing nodes line")
	}
	var nodeCount int
	if _, err := fmt.Sscanf(sc.Text(), "nodes %d", &nodeCount); err != nil {
		return nil, m.errorf(ErrInvalidInput, "bad nodes line: %v", err)
	}

	type textRow struct {
		level            int
		lowID, lowComp   int
		highID, highComp int
	}
	rows := make(map[int]textRow, nodeCount)
	for i := 0; i < nodeCount; i++ {
		if !sc.Scan() {
			return nil, m.errorf(ErrInvalidInput, "truncated node list")
		}
		var id, level, lowID, lowComp, highID, highComp int
		_, err := fmt.Sscanf(sc.Text(), "%d %d %d %d %d %d", &id, &level, &lowID, &lowComp, &highID, &highComp)
		if err != nil {
			return nil, m.errorf(ErrInvalidInput, "bad node line: %v", err)
		}
		rows[id] = textRow{level: level, lowID: lowID, lowComp: lowComp, highID: highID, highComp: highComp}
	}

	if !sc.Scan() {
		return nil, m.errorf(ErrInvalidInput, "missing roots line")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 || fields[0] != "roots" {
		return nil, m.errorf(ErrInvalidInput, "missing roots line")
	}
	rootIDs := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, m.errorf(ErrInvalidInput, "bad root id %q: %v", f, err)
		}
		rootIDs = append(rootIDs, n)
	}

	byID := make(map[int]edge, nodeCount+2)
	byID[0] = falseEdge
	byID[1] = trueEdge
	visiting := make(map[int]bool)
	var resolve func(id int) (edge, error)
	resolve = func(id int) (edge, error) {
		absID := id
		comp := false
		if absID < 0 {
			absID, comp = -absID, true
		}
		if e, ok := byID[absID]; ok {
			if comp {
				return e.negate(), nil
			}
			return e, nil
		}
		if visiting[absID] {
			return 0, m.errorf(ErrInvalidInput, "cycle in textual BDD at node %d", absID)
		}
		row, ok := rows[absID]
		if !ok {
			return 0, m.errorf(ErrInvalidInput, "dangling node reference %d", absID)
		}
		visiting[absID] = true
		lowSigned, highSigned := row.lowID, row.highID
		if row.lowComp != 0 {
			lowSigned = -lowSigned
		}
		if row.highComp != 0 {
			highSigned = -highSigned
		}
		low, err := resolve(lowSigned)
		if err != nil {
			return 0, err
		}
		high, err := resolve(highSigned)
		if err != nil {
			return 0, err
		}
		delete(visiting, absID)
		if row.level < 0 || row.level >= int(m.varnum) {
			return 0, m.errorf(ErrInvalidInput, "level %d out of range in textual BDD", row.level)
		}
		canon, err := m.findOrAdd(int32(row.level), low, high)
		if err != nil {
			return 0, err
		}
		byID[absID] = canon
		if comp {
			return canon.negate(), nil
		}
		return canon, nil
	}

	roots := make([]Handle, len(rootIDs))
	for k, id := range rootIDs {
		e, err := resolve(id)
		if err != nil {
			return nil, err
		}
		roots[k] = m.retnode(e)
	}
	return roots, nil
}
