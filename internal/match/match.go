// Package match resolves free-text task names against stored task titles.
// Scores tolerate typos and voice-transcription noise so "comprar víveres"
// still resolves to "Comprar viveres".
package match

import (
	"sort"
	"strings"

	"github.com/antoniostano/taskpal/internal/taskapi"
)

// DefaultThreshold is the minimum similarity score accepted as a match.
const DefaultThreshold = 82

// Ratio computes a token-order-insensitive similarity score in 0..100.
// Both strings are lowercased, split into tokens and re-joined in sorted
// order before a normalized edit-distance comparison, so "lavar el perro"
// and "el perro lavar" score 100.
func Ratio(a, b string) int {
	na := tokenSort(a)
	nb := tokenSort(b)
	if na == nb {
		return 100
	}
	if na == "" || nb == "" {
		return 0
	}

	ra := []rune(na)
	rb := []rune(nb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 100 - (100*levenshtein(ra, rb))/longest
}

// Best returns the task whose title scores highest against searchTerm,
// breaking ties by first occurrence. Scores below threshold, or an empty
// task list, yield the defined no-match outcome (zero task, score 0).
func Best(searchTerm string, tasks []taskapi.Task, threshold int) (taskapi.Task, int, bool) {
	var best taskapi.Task
	bestScore := -1
	for _, task := range tasks {
		score := Ratio(searchTerm, task.Title)
		if score > bestScore {
			best = task
			bestScore = score
		}
	}
	if bestScore < 0 || bestScore < threshold {
		return taskapi.Task{}, 0, false
	}
	return best, bestScore, true
}

func tokenSort(s string) string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
