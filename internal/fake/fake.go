// Package fake provides the random value source used to synthesize records
// and padding columns.
package fake

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// Provider produces fake values. Implementations need not be safe for
// concurrent use; each worker owns its own Provider.
type Provider interface {
	Word() string
	Name() string
	FirstName() string
	LastName() string
	Email() string
	Phone() string
	Sentence(words int) string
	Country() string
	City() string
	Job() string
	Company() string
	IPv4() string
	URL() string
	UUID() string
	Bool() bool
	// DateBetween returns an instant in [start, end].
	DateBetween(start, end time.Time) time.Time
	// Int returns an integer in [min, max].
	Int(min, max int64) int64
	// Float returns a float in [min, max).
	Float(min, max float64) float64
	// Pick returns one of values, chosen uniformly.
	Pick(values []string) string
}

// Faker is the gofakeit-backed Provider.
type Faker struct {
	f   *gofakeit.Faker
	rng *rand.Rand
	ids *rand.ChaCha8
}

// New derives a Faker from rng so that a seeded rng also fixes every value the
// Faker produces.
func New(rng *rand.Rand) *Faker {
	return NewSeeded(rng.Uint64())
}

// NewSeeded builds a Faker from a single seed.
func NewSeeded(seed uint64) *Faker {
	var key [32]byte
	s := seed
	for i := 0; i < 4; i++ {
		s = SplitMix64(s)
		binary.LittleEndian.PutUint64(key[i*8:], s)
	}
	return &Faker{
		// gofakeit treats seed 0 as "use entropy"; keep it non-zero.
		f:   gofakeit.New(SplitMix64(seed) | 1),
		rng: rand.New(rand.NewPCG(seed, SplitMix64(seed))),
		ids: rand.NewChaCha8(key),
	}
}

func (p *Faker) Word() string              { return p.f.Word() }
func (p *Faker) Name() string              { return p.f.Name() }
func (p *Faker) FirstName() string         { return p.f.FirstName() }
func (p *Faker) LastName() string          { return p.f.LastName() }
func (p *Faker) Email() string             { return p.f.Email() }
func (p *Faker) Phone() string             { return p.f.Phone() }
func (p *Faker) Sentence(words int) string { return p.f.Sentence(words) }
func (p *Faker) Country() string           { return p.f.Country() }
func (p *Faker) City() string              { return p.f.City() }
func (p *Faker) Job() string               { return p.f.JobTitle() }
func (p *Faker) Company() string           { return p.f.Company() }
func (p *Faker) IPv4() string              { return p.f.IPv4Address() }
func (p *Faker) URL() string               { return p.f.URL() }
func (p *Faker) Bool() bool                { return p.rng.IntN(2) == 1 }

// UUID returns a version 4 UUID drawn from the Faker's own stream.
func (p *Faker) UUID() string {
	id, err := uuid.NewRandomFromReader(p.ids)
	if err != nil {
		// ChaCha8 never fails to read.
		return uuid.NewString()
	}
	return id.String()
}

func (p *Faker) DateBetween(start, end time.Time) time.Time {
	if end.Before(start) {
		start, end = end, start
	}
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	if span < math.MaxInt64 {
		return start.Add(time.Duration(p.rng.Int64N(int64(span) + 1)))
	}
	// Sub saturates past ~292 years; draw whole seconds instead.
	secs := end.Unix() - start.Unix()
	v := time.Unix(start.Unix()+p.rng.Int64N(secs+1), 0).In(start.Location())
	if v.Before(start) {
		return start
	}
	if v.After(end) {
		return end
	}
	return v
}

func (p *Faker) Int(min, max int64) int64 {
	if max < min {
		min, max = max, min
	}
	// Two's complement keeps the width exact even when max-min overflows int64.
	width := uint64(max) - uint64(min)
	if width == math.MaxUint64 {
		return int64(p.rng.Uint64())
	}
	return min + int64(p.rng.Uint64N(width+1))
}

func (p *Faker) Float(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + p.rng.Float64()*(max-min)
}

func (p *Faker) Pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[p.rng.IntN(len(values))]
}

// SplitMix64 is one step of the SplitMix64 generator, used to spread seeds.
func SplitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
