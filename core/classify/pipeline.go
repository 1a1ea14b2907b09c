// Package classify turns raw model scores into a ranked classification
// result with derived category, confidence band, explanation and
// recommendations. Classification is pure given (model, image): no state
// survives between calls.
package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/verdant-labs/cropsight/core/errors"
	"github.com/verdant-labs/cropsight/core/model"
)

// Confidence band wire strings.
const (
	LevelVeryHigh = "Very High"
	LevelHigh     = "High"
	LevelModerate = "Moderate"
	LevelLow      = "Low"
)

const lowConfidenceAdvisory = " Manual inspection recommended for confirmation."

// ClassProbability is one entry of the ranked probability list.
type ClassProbability struct {
	Class                string  `json:"class"`
	Confidence           float64 `json:"confidence"`
	ConfidencePercentage float64 `json:"confidence_percentage"`
}

// Result is the per-request classification outcome. Created per request,
// serialized, then discarded.
type Result struct {
	PredictedClass       string             `json:"predicted_class"`
	Category             string             `json:"category"`
	Subtype              string             `json:"subtype,omitempty"`
	Confidence           float64            `json:"confidence"`
	ConfidencePercentage float64            `json:"confidence_percentage"`
	ConfidenceLevel      string             `json:"confidence_level"`
	AllProbabilities     []ClassProbability `json:"all_probabilities"`
	Explanation          string             `json:"explanation"`
	Recommendations      []string           `json:"recommendations"`
	ModelVersion         string             `json:"model_version"`
	ModelName            string             `json:"model_name"`
}

// Pipeline binds a model handle to its preprocessing capability and class
// list. It holds no mutable state.
type Pipeline struct {
	Model        model.Model
	Preprocessor model.Preprocessor
	Classes      []string
}

// Classify runs the full path from image path to result.
func (p Pipeline) Classify(imagePath string) (Result, error) {
	tensor, err := p.Preprocessor.Preprocess(imagePath)
	if err != nil {
		return Result{}, err
	}
	scores, err := p.Model.Infer(tensor)
	if err != nil {
		return Result{}, errors.Wrap(fmt.Errorf("inference failed: %w", err), errors.CategoryInternalFailure, "inference_failed", false)
	}
	if len(scores) != len(p.Classes) {
		return Result{}, errors.Wrap(fmt.Errorf("model returned %d scores for %d classes", len(scores), len(p.Classes)), errors.CategoryInternalFailure, "score_count_mismatch", false)
	}

	probabilities := Softmax(scores)
	predicted := ArgMax(probabilities)
	predictedClass := p.Classes[predicted]
	confidence := probabilities[predicted]

	category, subtype := ParseClassName(predictedClass)
	level := ConfidenceLevel(confidence)

	ranked := make([]ClassProbability, len(p.Classes))
	for i, class := range p.Classes {
		ranked[i] = ClassProbability{
			Class:                class,
			Confidence:           probabilities[i],
			ConfidencePercentage: probabilities[i] * 100,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	return Result{
		PredictedClass:       predictedClass,
		Category:             category,
		Subtype:              subtype,
		Confidence:           confidence,
		ConfidencePercentage: confidence * 100,
		ConfidenceLevel:      level,
		AllProbabilities:     ranked,
		Explanation:          Explanation(predictedClass, confidence, level),
		Recommendations:      Recommendations(predictedClass),
		ModelVersion:         p.Model.Version(),
		ModelName:            p.Model.Name(),
	}, nil
}

// Softmax converts raw scores into probabilities summing to 1. The max
// score is subtracted before exponentiation for numeric stability.
func Softmax(scores []float32) []float64 {
	if len(scores) == 0 {
		return nil
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp(float64(s - maxScore))
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// ArgMax returns the index of the highest probability; ties resolve to the
// lowest index.
func ArgMax(probabilities []float64) int {
	best := 0
	for i, p := range probabilities {
		if p > probabilities[best] {
			best = i
		}
	}
	return best
}

// ParseClassName splits a class name into display category and subtype by
// the model's naming convention.
func ParseClassName(class string) (category, subtype string) {
	switch {
	case strings.HasPrefix(class, "Pest_"):
		return "Pest", strings.TrimPrefix(class, "Pest_")
	case strings.HasPrefix(class, "Nutrient_"):
		return "Nutrient Deficiency", strings.TrimPrefix(class, "Nutrient_")
	case class == "Healthy":
		return "Healthy", ""
	case class == "Water_Stress":
		return "Water Stress", ""
	case class == "Not_Plant":
		return "Invalid Input", ""
	default:
		return class, ""
	}
}

// ConfidenceLevel maps a probability onto the discrete band ladder. Each
// threshold is inclusive at the lower bound.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.85:
		return LevelVeryHigh
	case confidence >= 0.70:
		return LevelHigh
	case confidence >= 0.55:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Explanation builds the per-class narrative with the confidence suffix,
// plus the manual-inspection advisory when the band is Low.
func Explanation(class string, confidence float64, level string) string {
	text, ok := explanations[class]
	if !ok {
		text = fmt.Sprintf("Plant classified as %s.", class)
	}
	text += fmt.Sprintf(" Confidence level: %s (%.1f%%).", level, confidence*100)
	if level == LevelLow {
		text += lowConfidenceAdvisory
	}
	return text
}

// Recommendations returns the static treatment list for a class, or the
// fallback entry for unmapped classes.
func Recommendations(class string) []string {
	if recs, ok := recommendations[class]; ok {
		return append([]string(nil), recs...)
	}
	return append([]string(nil), fallbackRecommendations...)
}
