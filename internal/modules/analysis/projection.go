package analysis

import (
	"fmt"
	"math"

	"github.com/aristath/finsight/internal/domain"
)

// ProjectionInput describes an investment plan
type ProjectionInput struct {
	InitialCapital    float64              `json:"initial_capital"`
	Months            int                  `json:"investment_period"`
	ExpectedReturn    float64              `json:"expected_return"` // annual, percent
	MonthlyInvestment float64              `json:"monthly_investment"`
	RiskTolerance     domain.RiskTolerance `json:"risk_tolerance"`
}

// CurvePoint is the projected portfolio value after Month months
type CurvePoint struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// Projection is the outcome of compounding a plan monthly
type Projection struct {
	ProjectionInput
	TotalInvestment  float64      `json:"total_investment"`
	FutureValue      float64      `json:"future_value"`
	ExpectedProfit   float64      `json:"expected_profit"`
	AnnualizedReturn float64      `json:"annualized_return"` // percent
	Curve            []CurvePoint `json:"curve"`
}

// Validate checks the plan can be projected
func (in ProjectionInput) Validate() error {
	for _, v := range []float64{in.InitialCapital, in.ExpectedReturn, in.MonthlyInvestment} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: amounts and return must be finite and non-negative", ErrInvalidInput)
		}
	}
	if in.Months < 1 {
		return fmt.Errorf("%w: investment period must be at least one month", ErrInvalidInput)
	}
	if in.InitialCapital+in.MonthlyInvestment == 0 {
		return fmt.Errorf("%w: nothing is invested", ErrInvalidInput)
	}
	if !in.RiskTolerance.Valid() {
		return fmt.Errorf("%w: unknown risk tolerance %q", ErrInvalidInput, in.RiskTolerance)
	}
	return nil
}

// Project compounds the plan monthly at ExpectedReturn/12 percent.
// A zero rate grows linearly.
func Project(in ProjectionInput) (Projection, error) {
	if err := in.Validate(); err != nil {
		return Projection{}, err
	}

	rate := in.ExpectedReturn / 12 / 100
	p := Projection{
		ProjectionInput: in,
		TotalInvestment: in.InitialCapital + in.MonthlyInvestment*float64(in.Months),
		Curve:           make([]CurvePoint, 0, in.Months+1),
	}

	for m := 0; m <= in.Months; m++ {
		p.Curve = append(p.Curve, CurvePoint{Month: m, Value: futureValue(in.InitialCapital, in.MonthlyInvestment, rate, m)})
	}

	p.FutureValue = p.Curve[in.Months].Value
	p.ExpectedProfit = p.FutureValue - p.TotalInvestment
	p.AnnualizedReturn = (math.Pow(p.FutureValue/p.TotalInvestment, 12/float64(in.Months)) - 1) * 100
	return p, nil
}

// futureValue is initial(1+r)^n + monthly((1+r)^n - 1)/r
func futureValue(initial, monthly, rate float64, months int) float64 {
	n := float64(months)
	if rate == 0 {
		return initial + monthly*n
	}
	growth := math.Pow(1+rate, n)
	return initial*growth + monthly*(growth-1)/rate
}
