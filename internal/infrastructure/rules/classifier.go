package rules

import (
	"sort"
	"strings"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

type weightedTrigger struct {
	phrase string
	weight int
}

type typeScorer struct {
	docType  string
	triggers []weightedTrigger
}

// Classifier scores text against an ordered keyword taxonomy.
type Classifier struct {
	scorers []typeScorer
}

func NewClassifier(table []TypeRule) *Classifier {
	ordered := make([]TypeRule, len(table))
	copy(ordered, table)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	scorers := make([]typeScorer, 0, len(ordered))
	for _, rule := range ordered {
		scorer := typeScorer{docType: rule.Type}
		for _, phrase := range rule.Triggers {
			phrase = strings.ToLower(strings.TrimSpace(phrase))
			if phrase == "" {
				continue
			}
			scorer.triggers = append(scorer.triggers, weightedTrigger{
				phrase: phrase,
				weight: len(strings.Fields(phrase)),
			})
		}
		scorers = append(scorers, scorer)
	}
	return &Classifier{scorers: scorers}
}

func NewDefaultClassifier() *Classifier {
	return NewClassifier(DocumentTypes)
}

// Classify returns the type with the strictly highest positive score, or unknown.
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	best := domain.TypeUnknown
	bestScore := 0
	for _, scorer := range c.scorers {
		if score := scorer.score(lower); score > bestScore {
			best = scorer.docType
			bestScore = score
		}
	}
	return best
}

// Scores exposes the raw score of every type.
func (c *Classifier) Scores(text string) map[string]int {
	lower := strings.ToLower(text)
	out := make(map[string]int, len(c.scorers))
	for _, scorer := range c.scorers {
		out[scorer.docType] = scorer.score(lower)
	}
	return out
}

func (s typeScorer) score(lower string) int {
	total := 0
	for _, trigger := range s.triggers {
		total += strings.Count(lower, trigger.phrase) * trigger.weight
	}
	return total
}
