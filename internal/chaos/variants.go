package chaos

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"

	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"golang.org/x/sync/errgroup"
)

// Variant is one perturbed copy of a base table.
type Variant struct {
	Index int
	Name  string
	Seed  uint64
	Table *table.Table
	Plan  *Plan
}

// VariantOptions configures Variants.
type VariantOptions struct {
	Count int
	// Seed makes the run reproducible. Nil draws fresh entropy per variant.
	Seed *uint64
	// NewProvider builds the fake value source of one variant from its
	// random source. Defaults to fake.New.
	NewProvider func(*rand.Rand) fake.Provider
	Logger      *slog.Logger
}

// NewRand returns a PCG-backed source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, fake.SplitMix64(seed)))
}

// VariantSeed derives the seed of variant i from a run seed.
func VariantSeed(runSeed uint64, i int) uint64 {
	return fake.SplitMix64(runSeed + uint64(i))
}

// SheetName is the default display name of the variant at index i.
func SheetName(i int) string {
	return fmt.Sprintf("Version %d", i+1)
}

// Variants produces opt.Count independent variants of base, in order. Workers
// run concurrently; each owns a clone of base, its random source and its fake
// provider.
func Variants(ctx context.Context, base *table.Table, p Params, opt VariantOptions) ([]Variant, error) {
	if opt.Count < 1 {
		return nil, &InvalidParameterError{Param: "variants", Value: opt.Count, Reason: "must be at least 1"}
	}
	if err := checkInputs(base, p); err != nil {
		return nil, err
	}
	newProvider := opt.NewProvider
	if newProvider == nil {
		newProvider = func(r *rand.Rand) fake.Provider { return fake.New(r) }
	}
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}

	seeds := make([]uint64, opt.Count)
	for i := range seeds {
		if opt.Seed != nil {
			seeds[i] = VariantSeed(*opt.Seed, i)
		} else {
			seeds[i] = rand.Uint64()
		}
	}

	out := make([]Variant, opt.Count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := NewRand(seeds[i])
			tb, plan, err := Transform(base.Clone(), p, rng, newProvider(rng))
			if err != nil {
				return fmt.Errorf("variant %d: %w", i+1, err)
			}
			tb.Name = SheetName(i)
			out[i] = Variant{Index: i, Name: tb.Name, Seed: seeds[i], Table: tb, Plan: plan}
			log.Debug("variant planned",
				"variant", i+1,
				"seed", seeds[i],
				"columns", tb.NumCols(),
				"renamed", len(plan.Renamed()),
				"dropped", len(plan.Dropped()),
				"padded", len(plan.Padding),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
