package driver

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/movelang/movecore/internal/movecoreerr"
	"github.com/movelang/movecore/internal/mutation/report"
)

// candidate pairs a not-yet-persisted mutant with the data a downsample
// filter needs to keep or drop it.
type candidate struct {
	mutantPath    string
	originalFile  string
	mutatedSource string
	diff          string
	mutation      report.Mutation
	node          int // stable index for deterministic random selection
}

// downsample applies the named filter to candidates, per SPEC_FULL.md §4.F:
// "all" is the identity filter, "random:N" keeps a deterministic pseudo-random
// subset of size N seeded by seed, and any other name is a ConfigError.
func downsample(name string, candidates []candidate, seed int64) ([]candidate, error) {
	switch {
	case name == "" || name == "all":
		return candidates, nil
	case strings.HasPrefix(name, "random:"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "random:"))
		if err != nil || n < 0 {
			return nil, movecoreerr.NewConfigError(fmt.Sprintf("invalid downsample filter %q", name), err)
		}
		if n >= len(candidates) {
			return candidates, nil
		}
		rng := rand.New(rand.NewSource(seed))
		shuffled := append([]candidate(nil), candidates...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		kept := shuffled[:n]
		// Re-sort by original node order so output ordering stays
		// deterministic and independent of the shuffle's internal order.
		sortCandidatesByNode(kept)
		return kept, nil
	default:
		return nil, movecoreerr.NewConfigError(fmt.Sprintf("unknown downsample filter %q", name), nil)
	}
}

func sortCandidatesByNode(cs []candidate) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j-1].node > cs[j].node; j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}
