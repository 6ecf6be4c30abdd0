package synth

import (
	"fmt"
	"math/rand"
)

// Level weight table entry
type WeightedLevel struct {
	Value  string  `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

// Status code weight table entry
type WeightedStatus struct {
	Value  int     `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

// Catalog holds the tables every entry is drawn from
type Catalog struct {
	Services    []string         `yaml:"services"`
	Endpoints   []string         `yaml:"endpoints"`
	Methods     []string         `yaml:"methods"`
	Levels      []WeightedLevel  `yaml:"levels"`
	StatusCodes []WeightedStatus `yaml:"status_codes"`
}

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

var (
	defaultServices = []string{"api-gateway", "authentication", "payment-service", "user-service", "notification-service"}

	defaultEndpoints = []string{
		"/api/users",
		"/api/products",
		"/api/orders",
		"/api/payments",
		"/api/login",
		"/api/logout",
		"/api/register",
		"/api/profile",
		"/api/settings",
	}

	defaultMethods = []string{"GET", "POST", "PUT", "DELETE"}

	defaultLevels = []WeightedLevel{
		{LevelInfo, 0.70},
		{LevelWarn, 0.15},
		{LevelError, 0.10},
		{LevelDebug, 0.05},
	}

	defaultStatusCodes = []WeightedStatus{
		{200, 0.75},
		{201, 0.05},
		{400, 0.08},
		{401, 0.05},
		{403, 0.02},
		{404, 0.03},
		{500, 0.02},
	}
)

// DefaultCatalog returns a copy of the built-in tables
func DefaultCatalog() Catalog {
	return Catalog{
		Services:    append([]string(nil), defaultServices...),
		Endpoints:   append([]string(nil), defaultEndpoints...),
		Methods:     append([]string(nil), defaultMethods...),
		Levels:      append([]WeightedLevel(nil), defaultLevels...),
		StatusCodes: append([]WeightedStatus(nil), defaultStatusCodes...),
	}
}

// Validate reports tables that would make a draw impossible
func (c Catalog) Validate() error {
	if len(c.Services) == 0 {
		return fmt.Errorf("catalog has no services")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("catalog has no endpoints")
	}
	if len(c.Methods) == 0 {
		return fmt.Errorf("catalog has no methods")
	}

	levelWeights := make([]float64, len(c.Levels))
	for i, l := range c.Levels {
		levelWeights[i] = l.Weight
	}
	if err := checkWeights("levels", levelWeights); err != nil {
		return err
	}

	statusWeights := make([]float64, len(c.StatusCodes))
	for i, s := range c.StatusCodes {
		statusWeights[i] = s.Weight
	}
	return checkWeights("status_codes", statusWeights)
}

func checkWeights(name string, weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("catalog has no %s", name)
	}
	var total float64
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("catalog %s has negative weight %v", name, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("catalog %s weights sum to zero", name)
	}
	return nil
}

// weightedIndex draws an index with probability proportional to its weight.
// Weights are relative and need not sum to 1.
func weightedIndex(r *rand.Rand, cumulative []float64) int {
	x := r.Float64() * cumulative[len(cumulative)-1]
	for i, c := range cumulative {
		if x < c {
			return i
		}
	}
	return len(cumulative) - 1
}

func cumulate(weights []float64) []float64 {
	out := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		sum += w
		out[i] = sum
	}
	return out
}
