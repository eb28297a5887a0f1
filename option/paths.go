package option

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// sequentialStream selects the PCG stream used when all batches share one source.
const sequentialStream uint64 = 0

// newNormalSource returns a standard-normal sampler on its own PCG state.
func newNormalSource(seed int64, stream uint64) distuv.Normal {
	return distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewPCG(uint64(seed), stream),
	}
}

// lognormal evaluates terminal forwards F_T = F0·exp(drift + volSqrtT·Z) and payoffs.
type lognormal struct {
	f0       float64
	strike   float64
	drift    float64 // −σ²T/2
	volSqrtT float64 // σ√T
	kind     Kind
}

func newLognormal(f0, k, sigma, t float64, kind Kind) lognormal {
	return lognormal{
		f0:       f0,
		strike:   k,
		drift:    -0.5 * sigma * sigma * t,
		volSqrtT: sigma * math.Sqrt(t),
		kind:     kind,
	}
}

// terminal is the per-path form. Each product is rounded explicitly so the compiler
// cannot fuse it into a multiply-add that the array form would not perform.
func (m lognormal) terminal(z float64) float64 {
	shock := float64(m.volSqrtT * z)
	return m.f0 * math.Exp(m.drift+shock)
}

// terminals is the array form of terminal with the shock scaled by scale (±σ√T).
func (m lognormal) terminals(dst, z []float64, scale float64) {
	floats.ScaleTo(dst, scale, z)
	floats.AddConst(m.drift, dst)
	for i, x := range dst {
		dst[i] = math.Exp(x)
	}
	floats.Scale(m.f0, dst)
}

func (m lognormal) payoff(ft float64) float64 {
	return m.kind.Payoff(ft, m.strike)
}

// runScalar draws and evaluates n paths one at a time.
func (m lognormal) runScalar(src distuv.Normal, n int, antithetic bool, acc *accumulator) {
	for i := 0; i < n; i++ {
		z := src.Rand()
		p := m.payoff(m.terminal(z))
		if !antithetic {
			acc.add(p)
			continue
		}
		acc.addPair(p, m.payoff(m.terminal(-z)))
	}
}

// batchBuffers is the scratch space of one vectorized batch.
type batchBuffers struct {
	z, up, down []float64
}

func newBatchBuffers(n int, antithetic bool) *batchBuffers {
	b := &batchBuffers{
		z:  make([]float64, n),
		up: make([]float64, n),
	}
	if antithetic {
		b.down = make([]float64, n)
	}
	return b
}

// runVector draws n variates into a buffer and evaluates them as arrays. Draw order
// and accumulation order match runScalar exactly.
func (m lognormal) runVector(src distuv.Normal, n int, antithetic bool, acc *accumulator, buf *batchBuffers) {
	z := buf.z[:n]
	for i := range z {
		z[i] = src.Rand()
	}

	up := buf.up[:n]
	m.terminals(up, z, m.volSqrtT)
	if !antithetic {
		for _, ft := range up {
			acc.add(m.payoff(ft))
		}
		return
	}

	down := buf.down[:n]
	m.terminals(down, z, -m.volSqrtT)
	for i := range up {
		acc.addPair(m.payoff(up[i]), m.payoff(down[i]))
	}
}

// accumulator keeps running sums of payoffs in path order.
type accumulator struct {
	n     int
	sum   float64
	sumSq float64

	// Antithetic bookkeeping: the Z-leg payoffs alone, and the pair means.
	pairs      int
	plainSum   float64
	plainSumSq float64
	pairSum    float64
	pairSumSq  float64
}

func (a *accumulator) add(p float64) {
	a.n++
	a.sum += p
	a.sumSq += p * p
}

func (a *accumulator) addPair(p, q float64) {
	a.add(p)
	a.add(q)

	a.pairs++
	a.plainSum += p
	a.plainSumSq += p * p
	mean := 0.5 * (p + q)
	a.pairSum += mean
	a.pairSumSq += mean * mean
}

func (a *accumulator) merge(b accumulator) {
	a.n += b.n
	a.sum += b.sum
	a.sumSq += b.sumSq
	a.pairs += b.pairs
	a.plainSum += b.plainSum
	a.plainSumSq += b.plainSumSq
	a.pairSum += b.pairSum
	a.pairSumSq += b.pairSumSq
}

// variance is the population variance sumSq/n − mean², floored at zero.
func variance(sum, sumSq float64, n int) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	return max(sumSq/float64(n)-mean*mean, 0)
}
