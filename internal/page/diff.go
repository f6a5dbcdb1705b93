package page

import "sjsage522/pagewatch/helpers"

// CompareOptions controls how Compare treats baselines and link sets
type CompareOptions struct {
	// Accumulate keeps previously seen links in the persisted state
	Accumulate bool
	// NotifyOnFirstRun reports changes when no previous state exists
	NotifyOnFirstRun bool
}

// Change is the outcome of comparing the current run with the stored state
type Change struct {
	Kind Kind
	// Baseline is true when there was no previous state
	Baseline bool
	// Changed is true when notifications should be sent
	Changed bool
	// NewLinks lists links absent from the previous state, sorted
	NewLinks []string
	Current  Representation
	// Next is what the run persists once notifications succeed
	Next Representation
	// Persist is true when Next differs from the previous state
	Persist bool
}

// Compare decides whether current differs from previous.
// An empty current representation means "no data" and never changes state.
func Compare(previous, current Representation, opts CompareOptions) Change {
	change := Change{Kind: current.Kind, Current: current, Next: previous}
	if current.IsZero() {
		return change
	}

	change.Baseline = previous.IsZero()

	switch current.Kind {
	case KindLinks:
		change.NewLinks = Difference(current.Links, previous.Links)
		change.Changed = len(change.NewLinks) > 0
		if opts.Accumulate {
			change.Next = NewLinkSet(append(append([]string{}, previous.Links...), current.Links...))
		} else {
			change.Next = current
		}
	case KindDigest:
		change.Changed = current.Digest != previous.Digest
		change.Next = current
	case KindLatest:
		change.Changed = current.Latest() != previous.Latest()
		change.Next = current
	}

	change.Persist = !change.Next.Equal(previous)

	if change.Baseline && !opts.NotifyOnFirstRun {
		change.Changed = false
		change.NewLinks = nil
	}
	return change
}

// Difference returns the values of current missing from previous, sorted
func Difference(current, previous []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, p := range previous {
		seen[p] = struct{}{}
	}
	var out []string
	for _, c := range current {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return helpers.UniqueSorted(out)
}
