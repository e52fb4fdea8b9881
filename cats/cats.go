// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cats implements discrete rate categories
// from a continuous probability distribution function,
// as used by relaxed clocks.
// Each category is expected to have the same probability.
package cats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete is a discrete category distribution.
type Discrete interface {
	// Cats returns the values of the different categories.
	Cats() []float64

	// String output for the function name and parameters.
	String() string
}

// Exponential is a discretized exponential distribution.
type Exponential struct {
	// Parameters of the exponential distribution.
	Param distuv.Exponential

	// Number of categories
	NumCat int
}

// Cats returns the values for an exponential distribution
// discretized in equal probability categories.
func (e Exponential) Cats() []float64 {
	return getCats(e.Param, e.NumCat)
}

// String output for the function name and parameters.
func (e Exponential) String() string {
	return fmt.Sprintf("exponential=%.6f", e.Param.Rate)
}

// Gamma is a discretized Gamma distribution.
type Gamma struct {
	// Parameters of the gamma distribution.
	Param distuv.Gamma

	// Number of categories
	NumCat int
}

// Cats returns the values for a Gamma distribution
// discretized in equal probability categories.
func (g Gamma) Cats() []float64 {
	return getCats(g.Param, g.NumCat)
}

// String output for the function name and parameters.
func (g Gamma) String() string {
	return fmt.Sprintf("gamma=%.6f", g.Param.Alpha)
}

// LogNormal is a discretized LogNormal distribution.
type LogNormal struct {
	// Parameters of the log normal distribution
	Param distuv.LogNormal

	// Number of categories
	NumCat int
}

// Cats return the values for a log Normal distribution
// discretized in equal probability categories.
func (ln LogNormal) Cats() []float64 {
	return getCats(ln.Param, ln.NumCat)
}

// String output for the function name and parameters.
func (ln LogNormal) String() string {
	return fmt.Sprintf("logNormal=%.6f", ln.Param.Sigma)
}

// New returns a discretized distribution
// with mean 1
// for a named distribution function
// ("lognormal", "gamma", or "exponential").
// The parameter is the standard deviation
// of the log normal,
// or the shape of the gamma,
// and it is ignored by the exponential.
func New(function string, param float64, n int) (Discrete, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid number of categories: %d", n)
	}
	switch function {
	case "lognormal":
		return LogNormal{
			Param: distuv.LogNormal{
				// mean = exp(mu + sigma^2/2) = 1
				Mu:    -param * param / 2,
				Sigma: param,
			},
			NumCat: n,
		}, nil
	case "gamma":
		return Gamma{
			Param: distuv.Gamma{
				Alpha: param,
				Beta:  param,
			},
			NumCat: n,
		}, nil
	case "exponential":
		return Exponential{
			Param: distuv.Exponential{
				Rate: 1,
			},
			NumCat: n,
		}, nil
	}
	return nil, fmt.Errorf("unknown function %q", function)
}

// Quantiler is a interfaces for distributions
// with a Quantile function
// (the inverse of the CDF function).
type quantiler interface {
	Quantile(p float64) float64
}

func getCats(q quantiler, n int) []float64 {
	cats := make([]float64, n)
	for i := range cats {
		p := (float64(i) + 0.5) / float64(n)
		cats[i] = q.Quantile(p)
	}
	return cats
}
