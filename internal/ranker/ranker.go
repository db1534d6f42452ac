// Package ranker orders and truncates metadata search results before they
// are offered to a user.
package ranker

import (
	"sort"

	"github.com/Nomadcxx/cinepost/internal/tmdb"
)

// DefaultMaxResults is how many candidates are offered when the caller
// does not specify a limit.
const DefaultMaxResults = 5

// Select returns up to max candidates from the given slice. When
// providerOrdered is true the provider's relevance order is trusted and
// preserved. When false the candidates are stably sorted by vote count,
// highest first, so ties keep their incoming order. The input slice is
// never mutated.
func Select(candidates []tmdb.Candidate, max int, providerOrdered bool) []tmdb.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxResults
	}

	out := make([]tmdb.Candidate, len(candidates))
	copy(out, candidates)

	if !providerOrdered {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].VoteCount > out[j].VoteCount
		})
	}

	if len(out) > max {
		out = out[:max]
	}
	return out
}
