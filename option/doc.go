// Package option values European options on forward prices.
//
// Black76Price and friends are the closed form: with forward F, strike K, expiry T,
// volatility σ and discount factor D,
//
//	d1 = [ln(F/K) + σ²T/2] / (σ√T)
//	d2 = d1 − σ√T
//	call = D·[F·N(d1) − K·N(d2)]
//	put  = D·[K·N(−d2) − F·N(−d1)]
//
// With T <= 0 or σ <= 0 the option is worth its discounted intrinsic value.
//
// SimulatePrice and SimulateWithStats estimate the same values by sampling the
// driftless lognormal terminal forward
//
//	F_T = F_0·exp(−σ²T/2 + σ√T·Z)
//
// in batches, optionally pairing every draw Z with −Z (antithetic variates). Batch
// size and scalar versus array evaluation never change the result for a fixed seed,
// path count and configuration.
package option
