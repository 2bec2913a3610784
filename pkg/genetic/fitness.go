package genetic

// FitnessScores holds the externally computed fitness components for one
// individual plus the composite scalar used for ranking. Components are
// expected in [0,1]; ComputeComposite clamps them before weighting so a
// misbehaving evaluator cannot blow up the composite.
type FitnessScores struct {
	Return          float64 `json:"return"`
	RiskAdjusted    float64 `json:"risk_adjusted"`
	WinRate         float64 `json:"win_rate"`
	DrawdownPenalty float64 `json:"drawdown_penalty"`
	TradeFrequency  float64 `json:"trade_frequency"`
	Consistency     float64 `json:"consistency"`
	Composite       float64 `json:"composite"`
}

// FitnessComponentNames lists the fitness components in canonical order,
// matching Components.
var FitnessComponentNames = []string{
	"return",
	"risk_adjusted",
	"win_rate",
	"drawdown_penalty",
	"trade_frequency",
	"consistency",
}

// compositeWeights is the fixed weighting over normalized components.
// Weights sum to 1.0.
var compositeWeights = []float64{0.25, 0.25, 0.15, 0.15, 0.10, 0.10}

// Components returns the component vector in canonical order. This is the
// phenotype vector used for phenotypic distance and Pareto objectives.
func (f FitnessScores) Components() []float64 {
	return []float64{
		f.Return,
		f.RiskAdjusted,
		f.WinRate,
		f.DrawdownPenalty,
		f.TradeFrequency,
		f.Consistency,
	}
}

// ComputeComposite clamps each component to [0,1] and returns the fixed
// weighted sum.
func ComputeComposite(f FitnessScores) float64 {
	components := f.Components()
	var composite float64
	for i, c := range components {
		composite += clamp01(c) * compositeWeights[i]
	}
	return composite
}

// WithComposite returns a copy of the scores with the composite recomputed
// from the components.
func (f FitnessScores) WithComposite() FitnessScores {
	f.Composite = ComputeComposite(f)
	return f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
