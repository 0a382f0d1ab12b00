package scoring

// Score is the evaluation of a single answer. Produced once, never mutated.
type Score struct {
	RelevanceScore      int      `json:"relevance_score" yaml:"relevance_score" mapstructure:"relevance_score"`
	Feedback            string   `json:"feedback" yaml:"feedback" mapstructure:"feedback"`
	Strengths           []string `json:"strengths" yaml:"strengths" mapstructure:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement" yaml:"areas_for_improvement" mapstructure:"areas_for_improvement"`
}

// FinalReport is the whole-session assessment produced at completion.
type FinalReport struct {
	OverallScore                  float64  `json:"overall_score" yaml:"overall_score" mapstructure:"overall_score"`
	ConsistentStrengths           []string `json:"consistent_strengths" yaml:"consistent_strengths" mapstructure:"consistent_strengths"`
	ConsistentAreasForImprovement []string `json:"consistent_areas_for_improvement" yaml:"consistent_areas_for_improvement" mapstructure:"consistent_areas_for_improvement"`
	Recommendations               []string `json:"recommendations" yaml:"recommendations" mapstructure:"recommendations"`
	OverallAssessment             string   `json:"overall_assessment" yaml:"overall_assessment" mapstructure:"overall_assessment"`
}

// Band classifies a 0..100 score the way the report colours it.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func BandOf(score float64) Band {
	switch {
	case score >= 80:
		return BandHigh
	case score >= 60:
		return BandMedium
	default:
		return BandLow
	}
}

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	default:
		return "low"
	}
}
