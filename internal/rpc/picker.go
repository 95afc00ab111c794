// Package rpc chooses which JSON-RPC endpoint a command talks to.
package rpc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"
)

// Endpoints more than this many blocks behind the best are dropped.
const staleBlockThreshold = 3

// ParseAlgorithm maps a config string to an Algorithm; "" is fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown rpc algorithm %q", s)
	}
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Picker selects an endpoint from a probe result according to its algorithm.
// Round-robin state is kept between calls.
type Picker struct {
	algo Algorithm

	mu     sync.Mutex
	rrNext int
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick returns the chosen endpoint. Input order is the configured order,
// which failover honours.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	live := fresh(endpoints)
	if len(live) == 0 {
		return Endpoint{}, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmFailover:
		return live[0], nil
	case AlgorithmRoundRobin:
		p.mu.Lock()
		defer p.mu.Unlock()
		e := live[p.rrNext%len(live)]
		p.rrNext = (p.rrNext + 1) % len(live)
		return e, nil
	default:
		sorted := append([]Endpoint(nil), live...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Latency < sorted[j].Latency })
		return sorted[0], nil
	}
}

// fresh keeps healthy endpoints that are within staleBlockThreshold of the
// highest block seen, preserving order.
func fresh(endpoints []Endpoint) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	var out []Endpoint
	for _, e := range endpoints {
		if !e.Healthy() {
			continue
		}
		if best-e.BlockNumber > staleBlockThreshold {
			continue
		}
		out = append(out, e)
	}
	return out
}
