// Package suggest implements scored prefix/substring autocomplete over a
// fixed topic catalog. The catalog is immutable after load, so concurrent
// reads need no synchronization.
package suggest

import (
	"bufio"
	"container/heap"
	"os"
	"strings"
)

// Match scores, best first. A term gets the highest bracket it qualifies for.
const (
	scoreExact      = 100
	scorePrefix     = 80
	scoreWordPrefix = 60
	scoreSubstring  = 40
)

// Catalog is the load-once list of suggestible topics.
type Catalog struct {
	terms []string
}

func NewCatalog(terms []string) *Catalog {
	return &Catalog{terms: terms}
}

// LoadCatalog reads one topic per line, skipping blanks.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			terms = append(terms, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Catalog{terms: terms}, nil
}

func (c *Catalog) Len() int { return len(c.terms) }

// Ranker suggests topics for a query.
type Ranker struct {
	catalog *Catalog
}

func NewRanker(catalog *Catalog) *Ranker {
	return &Ranker{catalog: catalog}
}

// Suggest returns up to limit topics for query, best score first, ties broken
// by catalog order. An empty or whitespace-only query returns an empty slice
// without scanning the catalog. When scored matches fall short of limit, a
// second pass appends remaining substring matches in catalog order.
func (r *Ranker) Suggest(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []string{}
	}

	h := &candidateHeap{}
	for i, term := range r.catalog.terms {
		if s := score(term, q); s > 0 {
			heap.Push(h, candidate{score: s, order: i, term: term})
		}
	}

	results := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)
	for h.Len() > 0 && len(results) < limit {
		c := heap.Pop(h).(candidate)
		if _, dup := seen[c.term]; dup {
			continue
		}
		seen[c.term] = struct{}{}
		results = append(results, c.term)
	}

	if len(results) < limit {
		for _, term := range r.catalog.terms {
			if len(results) >= limit {
				break
			}
			if _, dup := seen[term]; dup {
				continue
			}
			if strings.Contains(strings.ToLower(term), q) {
				seen[term] = struct{}{}
				results = append(results, term)
			}
		}
	}

	return results
}

func score(term, q string) int {
	t := strings.ToLower(term)
	if t == q {
		return scoreExact
	}
	if strings.HasPrefix(t, q) {
		return scorePrefix
	}
	for _, word := range strings.Fields(t) {
		if strings.HasPrefix(word, q) {
			return scoreWordPrefix
		}
	}
	if strings.Contains(t, q) {
		return scoreSubstring
	}
	return 0
}

type candidate struct {
	score int
	order int
	term  string
}

// candidateHeap is a max-heap on score; equal scores pop in catalog order.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score > h[j].score
	}
	return h[i].order < h[j].order
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
