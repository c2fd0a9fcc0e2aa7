// Package graph builds the commit graph gitjfs exposes through
// FileSystem.Graph(): every commit reachable from any ref, with
// parent edges, computed once per open instance and memoized. The
// teacher's graph.go used a goroutine pipeline with errgroup; Build
// borrows that idiom for commit parsing only: refs are listed first,
// then the tips and their ancestors are parsed by a worker pool, since
// each parse is a store round trip (subprocess cost in gitcli's case)
// that parallelizes well.
package graph

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gitjfs/gitjfs/meter"
	"github.com/gitjfs/gitjfs/objstore"
)

// Node is one vertex of the commit graph: a parsed commit plus the
// ids of its parents, which index back into the same Graph.
type Node struct {
	objstore.CommitInfo
}

// Graph is the immutable, memoized result of a commit-graph build: a
// directed graph (child -> parents) over every commit reachable from
// any ref the object store advertised at build time.
type Graph struct {
	nodes map[objstore.OID]*Node
	roots []objstore.OID // ref tips, in ListRefs order
}

// Node looks up a commit by id.
func (g *Graph) Node(oid objstore.OID) (*Node, bool) {
	n, ok := g.nodes[oid]
	return n, ok
}

// Len returns the number of commits in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Roots returns the commit ids the refs pointed at when the graph was
// built, in the object store's ListRefs order.
func (g *Graph) Roots() []objstore.OID {
	return append([]objstore.OID(nil), g.roots...)
}

// Build enumerates every ref under "refs/" and walks the full set of
// commits reachable from their tips, returning the resulting graph.
// The refs are listed in full before any commit is parsed; the tips
// and every commit discovered behind them are then parsed by up to
// workerCount parallel workers. progress is sent one Inc per commit
// parsed; a nil progress is replaced by &meter.NoProgressMeter{}.
func Build(ctx context.Context, store objstore.Store, workerCount int, progress meter.Progress) (*Graph, error) {
	if workerCount < 1 {
		workerCount = 1
	}
	if progress == nil {
		progress = &meter.NoProgressMeter{}
	}

	refs, err := store.ListRefs(ctx, "refs/")
	if err != nil {
		return nil, err
	}

	g := &Graph{nodes: make(map[objstore.OID]*Node)}
	var mu sync.Mutex
	seen := make(map[objstore.OID]bool)

	feed, work, stopFeeder := newOIDQueue()
	defer stopFeeder()
	eg, gctx := errgroup.WithContext(ctx)

	enqueue := func(oid objstore.OID) bool {
		mu.Lock()
		defer mu.Unlock()
		if seen[oid] {
			return false
		}
		seen[oid] = true
		return true
	}

	var pending sync.WaitGroup
	for _, ref := range refs {
		if enqueue(ref.OID) {
			pending.Add(1)
			feed <- ref.OID
		}
		g.roots = append(g.roots, ref.OID)
	}

	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()

	for i := 0; i < workerCount; i++ {
		eg.Go(func() error {
			for {
				select {
				case <-done:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				case oid := <-work:
					if err := processCommit(gctx, store, oid, g, &mu, enqueue, &pending, feed); err != nil {
						return err
					}
					progress.Inc()
					pending.Done()
				}
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

// newOIDQueue returns an unbounded producer/consumer pair backed by a
// single feeder goroutine holding a growing slice. It exists because
// the worker pool is simultaneously the only producer and the only
// consumer of parent commit ids: a fixed-size buffered channel can
// fill up while every worker is blocked trying to push a newly
// discovered parent into it, with no worker left to drain it. The
// feeder is always ready to receive on in, so a push never blocks
// behind a stalled consumer. stop releases the feeder goroutine once
// the caller is done with it.
func newOIDQueue() (in chan<- objstore.OID, out <-chan objstore.OID, stop func()) {
	inCh := make(chan objstore.OID)
	outCh := make(chan objstore.OID)
	quit := make(chan struct{})
	var once sync.Once

	go func() {
		var queue []objstore.OID
		for {
			if len(queue) == 0 {
				select {
				case oid := <-inCh:
					queue = append(queue, oid)
				case <-quit:
					return
				}
				continue
			}
			select {
			case oid := <-inCh:
				queue = append(queue, oid)
			case outCh <- queue[0]:
				queue = queue[1:]
			case <-quit:
				return
			}
		}
	}()

	return inCh, outCh, func() { once.Do(func() { close(quit) }) }
}

func processCommit(
	ctx context.Context,
	store objstore.Store,
	oid objstore.OID,
	g *Graph,
	mu *sync.Mutex,
	enqueue func(objstore.OID) bool,
	pending *sync.WaitGroup,
	feed chan<- objstore.OID,
) error {
	info, err := store.ReadCommit(ctx, oid)
	if err != nil {
		return err
	}

	mu.Lock()
	g.nodes[oid] = &Node{CommitInfo: *info}
	mu.Unlock()

	for _, p := range info.Parents {
		if enqueue(p) {
			pending.Add(1)
			feed <- p
		}
	}
	return nil
}
