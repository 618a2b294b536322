package model

// GlobalRegionID is the synthetic world region every FPU rolls up into.
const GlobalRegionID = 0

// Tier is a severity bucket for stress or shortage.
type Tier uint8

const (
	TierNone Tier = iota
	TierLow
	TierModerate
	TierHigh
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierLow:
		return "low"
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// ScarcityClass is the composite of stress and shortage.
type ScarcityClass uint8

const (
	ScarcityNone ScarcityClass = iota
	ScarcityStressOnly
	ScarcityShortageOnly
	ScarcityStressAndShortage
)

// String returns the class name.
func (c ScarcityClass) String() string {
	switch c {
	case ScarcityNone:
		return "none"
	case ScarcityStressOnly:
		return "stress"
	case ScarcityShortageOnly:
		return "shortage"
	case ScarcityStressAndShortage:
		return "stress-and-shortage"
	}
	return "unknown"
}

// TierPopulations holds the population living in each of the four tiers.
type TierPopulations struct {
	None     float64 `json:"none"`
	Low      float64 `json:"low"`
	Moderate float64 `json:"moderate"`
	High     float64 `json:"high"`
}

// Add credits pop to tier t.
func (p *TierPopulations) Add(t Tier, pop float64) {
	switch t {
	case TierNone:
		p.None += pop
	case TierLow:
		p.Low += pop
	case TierModerate:
		p.Moderate += pop
	case TierHigh:
		p.High += pop
	}
}

// Total sums the four tiers.
func (p TierPopulations) Total() float64 {
	return p.None + p.Low + p.Moderate + p.High
}

// ScarcityPopulations holds the population in each scarcity class.
type ScarcityPopulations struct {
	None              float64 `json:"noScarcity"`
	StressOnly        float64 `json:"onlyStress"`
	ShortageOnly      float64 `json:"onlyShortage"`
	StressAndShortage float64 `json:"stressShortage"`
}

// Add credits pop to class c.
func (p *ScarcityPopulations) Add(c ScarcityClass, pop float64) {
	switch c {
	case ScarcityNone:
		p.None += pop
	case ScarcityStressOnly:
		p.StressOnly += pop
	case ScarcityShortageOnly:
		p.ShortageOnly += pop
	case ScarcityStressAndShortage:
		p.StressAndShortage += pop
	}
}

// Total sums the four classes.
func (p ScarcityPopulations) Total() float64 {
	return p.None + p.StressOnly + p.ShortageOnly + p.StressAndShortage
}

// AggregateDatum is a world-region roll-up of FPU data for one time bucket.
// Each population breakdown sums to Population.
type AggregateDatum struct {
	WorldRegionID            int                 `json:"worldRegionId"`
	StartYear                int                 `json:"startYear"`
	EndYear                  int                 `json:"endYear"`
	Population               float64             `json:"population"`
	Availability             float64             `json:"availability"`
	ConsumptionIrrigation    float64             `json:"consumptionIrrigation"`
	ConsumptionDomestic      float64             `json:"consumptionDomestic"`
	ConsumptionElectric      float64             `json:"consumptionElectric"`
	ConsumptionLivestock     float64             `json:"consumptionLivestock"`
	ConsumptionManufacturing float64             `json:"consumptionManufacturing"`
	ConsumptionTotal         float64             `json:"consumptionTotal"`
	Stress                   TierPopulations     `json:"populationStress"`
	Shortage                 TierPopulations     `json:"populationShortage"`
	Scarcity                 ScarcityPopulations `json:"populationScarcity"`
}
