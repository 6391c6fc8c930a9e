// Package search defines the web-search collaborator contract and the
// normalization of its loosely-shaped results into plain text.
package search

import "context"

// Provider is the contract for any web-search backend. The returned value is
// deliberately loose: depending on provider and version it may be an ordered
// sequence of records with title/source/snippet-like fields, a wrapper map
// with a "results" key holding such a sequence, or a bare string. Normalize
// flattens all of them.
type Provider interface {
	Search(ctx context.Context, query string) (any, error)
}
