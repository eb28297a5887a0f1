// Package bond works on cash-flow sequences discounted at a flat yield: bullet
// schedules, price/yield sensitivities and the price-to-yield solver.
//
//	P       = Σ CF_i · DF(t_i, y)
//	∂P/∂y   = Σ CF_i · ∂DF(t_i, y)/∂y
//	∂²P/∂y² = Σ CF_i · ∂²DF(t_i, y)/∂y²
//
// DF follows the compounding convention (see curve.Compounding.DiscountFactor).
package bond
