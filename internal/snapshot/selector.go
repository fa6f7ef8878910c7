// Package snapshot chooses which commits get a full symbol-index +
// dependency-extraction pass, per spec.md §4.2.
package snapshot

import (
	"sort"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

const maxImpactful = 9

// Select returns up to 10 commits to analyze: the top 9 by impact (ties
// broken by original order, stable), plus HEAD if HEAD is not already among
// them (displacing the least-impactful of the nine to make room). The
// result is ordered oldest-first, HEAD last.
//
// commits must be newest-first with commits[0] == HEAD, exactly as returned
// by gitdriver.EnumerateCommits.
func Select(commits []model.CommitRef) []model.CommitRef {
	if len(commits) == 0 {
		return nil
	}

	type indexed struct {
		commit model.CommitRef
		index  int
	}

	ranked := make([]indexed, len(commits))
	for i, c := range commits {
		ranked[i] = indexed{commit: c, index: i}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].commit.Impact > ranked[j].commit.Impact
	})

	n := maxImpactful
	if n > len(ranked) {
		n = len(ranked)
	}
	top := ranked[:n]

	head := indexed{commit: commits[0], index: 0}
	headIncluded := false
	for _, c := range top {
		if c.index == head.index {
			headIncluded = true
			break
		}
	}

	if !headIncluded {
		if len(top) > 0 {
			top = top[:len(top)-1]
		}
		top = append(top, head)
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].index > top[j].index
	})

	result := make([]model.CommitRef, len(top))
	for i, c := range top {
		result[i] = c.commit
	}
	return result
}
