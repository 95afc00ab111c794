package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"golang.org/x/sync/errgroup"
)

// ErrChainMismatch marks an endpoint that serves a different chain than expected.
var ErrChainMismatch = errors.New("endpoint serves a different chain")

const maxParallelProbes = 8

// Probe pings every URL concurrently and records latency, head block and
// chain id. Per-endpoint failures land in Endpoint.Err; Probe itself only
// fails when ctx is done. wantChainID 0 skips the chain id check.
func Probe(ctx context.Context, urls []string, wantChainID int64) ([]Endpoint, error) {
	out := make([]Endpoint, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelProbes)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = probeOne(gctx, u, wantChainID)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func probeOne(ctx context.Context, url string, wantChainID int64) Endpoint {
	c := chain.NewEVMClient(url)
	ep := Endpoint{URL: url}

	ep.Latency, ep.BlockNumber, ep.Err = c.Ping(ctx)
	if ep.Err != nil {
		return ep
	}
	ep.ChainID, ep.Err = c.ChainID(ctx)
	if ep.Err == nil && wantChainID != 0 && ep.ChainID != wantChainID {
		ep.Err = fmt.Errorf("%w: got %d, want %d", ErrChainMismatch, ep.ChainID, wantChainID)
	}
	return ep
}

// Select probes urls and returns the one algo prefers. A single URL is
// returned as-is.
func Select(ctx context.Context, urls []string, algo Algorithm, wantChainID int64) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}

	endpoints, err := Probe(ctx, urls, wantChainID)
	if err != nil {
		return "", err
	}
	best, err := NewPicker(algo).Pick(endpoints)
	if err != nil {
		return "", err
	}
	return best.URL, nil
}
