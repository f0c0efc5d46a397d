package match

import (
	"testing"

	"github.com/antoniostano/taskpal/internal/taskapi"
)

func TestBestEmptyListIsNoMatch(t *testing.T) {
	for _, term := range []string{"", "anything", "comprar víveres"} {
		if _, score, ok := Best(term, nil, DefaultThreshold); ok || score != 0 {
			t.Fatalf("Best(%q, nil) = ok=%v score=%d, want no match with score 0", term, ok, score)
		}
	}
}

func TestExactTitleScoresHundred(t *testing.T) {
	tasks := []taskapi.Task{
		{ID: "1", Title: "lavar el perro"},
		{ID: "2", Title: "comprar viveres"},
	}
	task, score, ok := Best("comprar viveres", tasks, DefaultThreshold)
	if !ok {
		t.Fatalf("Best() ok = false, want exact match")
	}
	if score != 100 {
		t.Fatalf("Best() score = %d, want 100 for exact title", score)
	}
	if task.ID != "2" {
		t.Fatalf("Best() task = %q, want id 2", task.ID)
	}
}

func TestRatioIsTokenOrderInsensitive(t *testing.T) {
	if got := Ratio("el perro lavar", "lavar el perro"); got != 100 {
		t.Fatalf("Ratio() = %d, want 100 for reordered tokens", got)
	}
}

func TestAccentNoiseStaysAboveThreshold(t *testing.T) {
	score := Ratio("comprar víveres", "Comprar viveres")
	if score < DefaultThreshold {
		t.Fatalf("Ratio() = %d, want >= %d for accent-only difference", score, DefaultThreshold)
	}
}

func TestBelowThresholdIsNoMatch(t *testing.T) {
	tasks := []taskapi.Task{{ID: "1", Title: "llamar al doctor"}}
	if _, score, ok := Best("regar las plantas", tasks, DefaultThreshold); ok || score != 0 {
		t.Fatalf("Best() = ok=%v score=%d, want no match for unrelated term", ok, score)
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	tasks := []taskapi.Task{
		{ID: "1", Title: "comprar viveres"},
		{ID: "2", Title: "llamar al doctor"},
	}
	terms := []string{"comprar viveres", "comprar vivere", "compar viveres", "llamar doctor", "zzz"}

	for _, term := range terms {
		_, _, strict := Best(term, tasks, 90)
		_, _, loose := Best(term, tasks, 60)
		if strict && !loose {
			t.Fatalf("term %q matched at threshold 90 but not 60", term)
		}
	}
}

func TestTieBreaksByFirstOccurrence(t *testing.T) {
	tasks := []taskapi.Task{
		{ID: "first", Title: "lavar el auto"},
		{ID: "second", Title: "lavar el auto"},
	}
	task, _, ok := Best("lavar el auto", tasks, DefaultThreshold)
	if !ok {
		t.Fatalf("Best() ok = false, want match")
	}
	if task.ID != "first" {
		t.Fatalf("Best() task = %q, want first occurrence", task.ID)
	}
}

func TestRatioEmptyInputs(t *testing.T) {
	if got := Ratio("", ""); got != 100 {
		t.Fatalf("Ratio(empty, empty) = %d, want 100", got)
	}
	if got := Ratio("algo", ""); got != 0 {
		t.Fatalf("Ratio(algo, empty) = %d, want 0", got)
	}
}

func TestRatioTypoTolerance(t *testing.T) {
	// Transcribed/misspelled input should still clear the default threshold.
	cases := []struct{ term, title string }{
		{"comprar vivere", "comprar viveres"},
		{"lavar el pero", "lavar el perro"},
	}
	for _, tc := range cases {
		if got := Ratio(tc.term, tc.title); got < DefaultThreshold {
			t.Fatalf("Ratio(%q, %q) = %d, want >= %d", tc.term, tc.title, got, DefaultThreshold)
		}
	}
}
