// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package similarity

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/salerec/internal/metrics"
	"github.com/tomtom215/salerec/internal/recommend"
	"github.com/tomtom215/salerec/internal/recommend/pairwise"
)

// Option configures an Index.
type Option func(*Index)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(ix *Index) {
		ix.logger = logger.With().Str("component", "similarity").Logger()
	}
}

// Index caches similarity neighborhoods for the rows of a data model.
type Index struct {
	model  recommend.DataModel
	rowIdx map[string]int
	logger zerolog.Logger

	// complete is true when the matrix holds no NaN cell, so a whole row
	// can be scored in one batched metric call.
	complete bool

	setsOnce sync.Once
	sets     [][]string

	mu         sync.RWMutex
	spec       pairwise.Spec
	size       int
	generation uint64
	cache      map[string][]recommend.Neighbor

	group singleflight.Group
}

// New creates an Index over model. size <= 0 keeps every scored row.
// An invalid spec is reported on the first build, not here.
func New(model recommend.DataModel, spec pairwise.Spec, size int, opts ...Option) *Index {
	ix := &Index{
		model:  model,
		rowIdx: make(map[string]int, model.UsersCount()),
		logger: zerolog.Nop(),
		spec:   spec,
		size:   normalizeSize(size),
		cache:  make(map[string][]recommend.Neighbor),
	}
	for i, id := range model.UserIDs() {
		ix.rowIdx[id] = i
	}
	ix.complete = !model.HasPreferenceValues() || !hasNaN(model.Matrix())

	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Model returns the data model the index was built over.
func (ix *Index) Model() recommend.DataModel { return ix.model }

// Config returns the current metric and neighborhood size.
func (ix *Index) Config() (pairwise.Spec, int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.spec, ix.size
}

// Reconfigure switches the metric or the neighborhood size. Any change
// drops every cached neighborhood; an identical configuration is a no-op.
func (ix *Index) Reconfigure(spec pairwise.Spec, size int) {
	size = normalizeSize(size)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.spec == spec && ix.size == size {
		return
	}

	ix.logger.Debug().
		Str("metric", spec.String()).
		Int("size", size).
		Int("dropped", len(ix.cache)).
		Msg("Neighborhood cache invalidated")

	ix.spec = spec
	ix.size = size
	ix.generation++
	ix.cache = make(map[string][]recommend.Neighbor)
	metrics.NeighborhoodInvalidations.Inc()
}

// Lookup returns the neighborhood of anchor for the current configuration,
// building and caching it on first use. The returned slice is shared and
// must not be modified.
func (ix *Index) Lookup(anchor string) ([]recommend.Neighbor, error) {
	ix.mu.RLock()
	cached, ok := ix.cache[anchor]
	spec, size, gen := ix.spec, ix.size, ix.generation
	ix.mu.RUnlock()

	if ok {
		metrics.RecordNeighborhoodLookup(spec.String(), true)
		return cached, nil
	}
	metrics.RecordNeighborhoodLookup(spec.String(), false)

	key := strconv.FormatUint(gen, 10) + "\x00" + anchor
	v, err, _ := ix.group.Do(key, func() (interface{}, error) {
		neighbors, err := ix.build(anchor, spec, size)
		if err != nil {
			return nil, err
		}

		ix.mu.Lock()
		// A concurrent Reconfigure makes this result stale; hand it to the
		// waiting callers but keep it out of the new cache.
		if ix.generation == gen {
			ix.cache[anchor] = neighbors
		}
		ix.mu.Unlock()
		return neighbors, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]recommend.Neighbor), nil
}

// Build computes the neighborhood of anchor for the current configuration
// without touching the cache.
func (ix *Index) Build(anchor string) ([]recommend.Neighbor, error) {
	spec, size := ix.Config()
	return ix.build(anchor, spec, size)
}

// Warm builds the neighborhood of every row using up to workers goroutines.
// workers <= 0 uses GOMAXPROCS.
func (ix *Index) Warm(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ix.model.UserIDs() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := ix.Lookup(id)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("warm neighborhoods: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("warm neighborhoods: %w", err)
	}

	ix.logger.Info().
		Int("anchors", ix.model.UsersCount()).
		Dur("duration", time.Since(start)).
		Msg("Neighborhood cache warmed")
	return nil
}

func (ix *Index) build(anchor string, spec pairwise.Spec, size int) ([]recommend.Neighbor, error) {
	row, ok := ix.rowIdx[anchor]
	if !ok {
		return nil, recommend.NotFoundError("anchor", anchor)
	}

	start := time.Now()
	scores, err := ix.scores(row, spec)
	if err != nil {
		return nil, fmt.Errorf("score %q with %s: %w", anchor, spec, err)
	}

	ids := ix.model.UserIDs()
	neighbors := make([]recommend.Neighbor, len(ids))
	for i, id := range ids {
		neighbors[i] = recommend.Neighbor{ID: id, Score: scores[i]}
	}
	neighbors = Rank(neighbors, size)

	metrics.RecordNeighborhoodBuild(spec.String(), time.Since(start))
	return neighbors, nil
}

// scores evaluates spec between row and every row of the model.
func (ix *Index) scores(row int, spec pairwise.Spec) ([]float64, error) {
	n := ix.model.UsersCount()

	if spec.UsesItemSets() {
		sets := ix.itemSets()
		out := pairwise.LogLikelihoodCoefficient(ix.model.ItemsCount(), sets[row:row+1], sets)
		return mat.Row(nil, 0, out), nil
	}

	fn, err := spec.Vector()
	if err != nil {
		return nil, err
	}

	if ix.model.ItemsCount() == 0 {
		return nanSlice(n), nil
	}

	m := ix.model.Matrix()
	if ix.complete {
		anchor := mat.NewDense(1, ix.model.ItemsCount(), mat.Row(nil, row, m))
		out, err := fn(anchor, m)
		if err != nil {
			return nil, err
		}
		return mat.Row(nil, 0, out), nil
	}

	anchor := mat.Row(nil, row, m)
	out := make([]float64, n)
	other := make([]float64, len(anchor))
	for i := 0; i < n; i++ {
		mat.Row(other, i, m)
		out[i], err = commonScore(fn, anchor, other)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (ix *Index) itemSets() [][]string {
	ix.setsOnce.Do(func() {
		ids := ix.model.UserIDs()
		ix.sets = make([][]string, len(ids))
		for i, id := range ids {
			// ids come from the model, so the lookup cannot miss.
			ix.sets[i], _ = ix.model.ItemSetFromUser(id)
		}
	})
	return ix.sets
}

// commonScore scores a and b over the dimensions both have a value for.
// No common dimension yields NaN.
func commonScore(fn pairwise.VectorFunc, a, b []float64) (float64, error) {
	var xa, xb []float64
	for j := range a {
		if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
			continue
		}
		xa = append(xa, a[j])
		xb = append(xb, b[j])
	}
	if len(xa) == 0 {
		return math.NaN(), nil
	}

	out, err := fn(mat.NewDense(1, len(xa), xa), mat.NewDense(1, len(xb), xb))
	if err != nil {
		return 0, err
	}
	return out.At(0, 0), nil
}

// Rank sorts neighbors by descending score with NaN scores last. Ties keep
// their input order. With size > 0 only the first size defined entries are
// kept and NaN entries are dropped.
func Rank(neighbors []recommend.Neighbor, size int) []recommend.Neighbor {
	sort.SliceStable(neighbors, func(i, j int) bool {
		a, b := neighbors[i], neighbors[j]
		if !a.Defined() {
			return false
		}
		if !b.Defined() {
			return true
		}
		return a.Score > b.Score
	})

	if size <= 0 {
		return neighbors
	}

	defined := sort.Search(len(neighbors), func(i int) bool {
		return !neighbors[i].Defined()
	})
	if defined > size {
		defined = size
	}
	return neighbors[:defined:defined]
}

func normalizeSize(size int) int {
	if size < 0 {
		return 0
	}
	return size
}

func hasNaN(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(m.At(i, j)) {
				return true
			}
		}
	}
	return false
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
