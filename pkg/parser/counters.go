package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder netstat prints where a column has no value.
const Placeholder = "-"

// CounterKind one of the six per-interface statistics.
type CounterKind int

const (
	ReceivedPackets CounterKind = iota
	InputErrors
	InputDrops
	SentPackets
	OutputErrors
	Collisions
)

// CounterKinds in column and exposition order.
var CounterKinds = []CounterKind{ReceivedPackets, InputErrors, InputDrops, SentPackets, OutputErrors, Collisions}

var counterMeta = [...]struct{ key, help string }{
	ReceivedPackets: {"ipkts", "Number of packets received"},
	InputErrors:     {"ierrs", "Number of input errors"},
	InputDrops:      {"idrop", "Number of dropped input packets"},
	SentPackets:     {"opkts", "Number of packets sent"},
	OutputErrors:    {"oerrs", "Number of output errors"},
	Collisions:      {"coll", "Number of packet collisions"},
}

// Key is the netstat column short name, used as the metric name suffix.
func (k CounterKind) Key() string { return counterMeta[k].key }

// Help is the metric description.
func (k CounterKind) Help() string { return counterMeta[k].help }

func (k CounterKind) String() string { return k.Key() }

// ToFloat converts a counter column. Empty and placeholder values are zero.
func ToFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Placeholder {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("counter value %q is not numeric", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("counter value %q is negative", s)
	}
	return v, nil
}
