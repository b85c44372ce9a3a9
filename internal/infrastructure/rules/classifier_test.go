package rules

import (
	"strings"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func TestClassifyReturnsUnknownWithoutTriggers(t *testing.T) {
	c := NewDefaultClassifier()
	if got := c.Classify("lorem ipsum dolor sit amet"); got != domain.TypeUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := c.Classify(""); got != domain.TypeUnknown {
		t.Fatalf("expected unknown for empty text, got %q", got)
	}
}

func TestClassifyWeightsLongerPhrases(t *testing.T) {
	c := NewDefaultClassifier()

	repeated := strings.Repeat("board resolution ", 5)
	scores := c.Scores(repeated)
	if scores[domain.TypeBoardResolution] != 15 {
		t.Fatalf("expected board_resolution score 15, got %d", scores[domain.TypeBoardResolution])
	}

	single := c.Scores("the resolution was noted")
	if scores[domain.TypeBoardResolution] <= single[domain.TypeBoardResolution] {
		t.Fatalf("expected repeated phrase to outscore single word: %d vs %d",
			scores[domain.TypeBoardResolution], single[domain.TypeBoardResolution])
	}
	if got := c.Classify(repeated); got != domain.TypeBoardResolution {
		t.Fatalf("expected board_resolution, got %q", got)
	}
}

func TestClassifyIsCaseInsensitiveAndDeterministic(t *testing.T) {
	c := NewDefaultClassifier()
	text := "ARTICLES OF ASSOCIATION of Acme Ltd. Share capital: 1000 shares."
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		if got := c.Classify(text); got != first {
			t.Fatalf("classification changed between runs: %q vs %q", first, got)
		}
	}
	if first != domain.TypeArticlesOfAssociation {
		t.Fatalf("expected articles_of_association, got %q", first)
	}
}

func TestClassifyTieGoesToLowestOrder(t *testing.T) {
	c := NewClassifier([]TypeRule{
		{Order: 2, Type: "second", Triggers: []string{"alpha"}},
		{Order: 1, Type: "first", Triggers: []string{"beta"}},
	})
	if got := c.Classify("alpha beta"); got != "first" {
		t.Fatalf("expected tie to resolve to lowest order, got %q", got)
	}
}

func TestClassifyServiceAgreementPrefersEarlierType(t *testing.T) {
	// "service agreement" triggers both employment_contract and commercial_agreement.
	c := NewDefaultClassifier()
	if got := c.Classify("This service agreement is made"); got != domain.TypeEmploymentContract {
		t.Fatalf("expected employment_contract, got %q", got)
	}
}
