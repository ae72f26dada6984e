// Package parser turns the text output of the cluster diagnostic commands into records.
package parser

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// HeaderName is the Name column of the netstat header row.
	HeaderName = "Name"
	// Loopback interface, never exported.
	Loopback = "lo0"
)

// netstat -iW columns following the "<host>-<lnn>:" prefix
const (
	colName = iota
	colMTU
	colNetwork
	colAddress
	colIpkts
	colIerrs
	colIdrop
	colOpkts
	colOerrs
	colColl
	numColumns
)

// InterfaceStats counters of one interface on one node, kept verbatim as printed.
type InterfaceStats struct {
	Node      string
	Interface string
	Counters  [6]string
}

// Counter returns the raw text of kind.
func (s InterfaceStats) Counter(kind CounterKind) string {
	return s.Counters[kind]
}

// Row one tokenized netstat line.
type Row struct {
	Host    string
	Node    string
	Name    string
	MTU     string
	Network string
	Address string
	// Counters are ipkts, ierrs, idrop, opkts, oerrs, coll
	Counters [6]string
}

// NetStats the parse result: node -> interface -> stats.
type NetStats struct {
	Nodes map[string]map[string]InterfaceStats
	// Mismatched counts non-blank lines that did not fit the column grammar.
	Mismatched int
}

// Len returns the number of interface records.
func (n *NetStats) Len() int {
	total := 0
	for _, ifaces := range n.Nodes {
		total += len(ifaces)
	}
	return total
}

// Records returns every record ordered by numeric node id, then interface name.
func (n *NetStats) Records() []InterfaceStats {
	out := make([]InterfaceStats, 0, n.Len())
	for _, ifaces := range n.Nodes {
		for _, rec := range ifaces {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return nodeLess(out[i].Node, out[j].Node)
		}
		return out[i].Interface < out[j].Interface
	})
	return out
}

func nodeLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil && ai != bi {
		return ai < bi
	}
	return a < b
}

// ParseNetStats parses `isi_for_array -sX netstat -iW` output.
//
// Blank lines are ignored. A line that does not fit the grammar is logged at warn level and
// skipped. Header rows, the loopback interface and protocol rows (MTU "-") are skipped
// silently. A later row for the same node and interface replaces an earlier one.
func ParseNetStats(raw string, logger *zap.Logger) *NetStats {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := &NetStats{Nodes: map[string]map[string]InterfaceStats{}}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row, ok := ParseLine(line)
		if !ok {
			stats.Mismatched++
			logger.Warn("unexpected line found in netstat -i output", zap.String("line", line))
			continue
		}
		if strings.EqualFold(row.Name, HeaderName) || strings.EqualFold(row.Name, Loopback) {
			continue
		}
		if row.MTU == Placeholder {
			continue
		}

		ifaces, ok := stats.Nodes[row.Node]
		if !ok {
			ifaces = map[string]InterfaceStats{}
			stats.Nodes[row.Node] = ifaces
		}
		if _, dup := ifaces[row.Name]; dup {
			logger.Debug("duplicate interface row, keeping the last one",
				zap.String("node_lnn", row.Node), zap.String("interface_name", row.Name))
		}
		ifaces[row.Name] = InterfaceStats{Node: row.Node, Interface: row.Name, Counters: row.Counters}
	}
	return stats
}

// ParseLine tokenizes one trimmed line: "<host>-<lnn>:" followed by at least ten
// whitespace-separated columns. Columns past the tenth are ignored.
func ParseLine(line string) (Row, bool) {
	prefix, rest, found := strings.Cut(line, ":")
	if !found {
		return Row{}, false
	}
	dash := strings.LastIndexByte(prefix, '-')
	if dash <= 0 || dash == len(prefix)-1 {
		return Row{}, false
	}
	host, node := strings.TrimSpace(prefix[:dash]), prefix[dash+1:]
	if host == "" || !isDigits(node) {
		return Row{}, false
	}

	cols := strings.Fields(rest)
	if len(cols) < numColumns {
		return Row{}, false
	}
	row := Row{
		Host:    host,
		Node:    node,
		Name:    cols[colName],
		MTU:     cols[colMTU],
		Network: cols[colNetwork],
		Address: cols[colAddress],
	}
	copy(row.Counters[:], cols[colIpkts:colColl+1])
	return row, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
