// Package pagination pages through the merged chromosomes ++ scaffolds order when the
// two collections live in separate stores that only answer page-index/page-size queries.
package pagination

import (
	"math"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

// Unbounded marks a scaffold total that the caller does not know.
const Unbounded int64 = -1

// Request is one page query against a single backing store.
//
// The store is asked for page Page with page size StorePageSize. From the items it
// returns, the first Offset are dropped and the next Size are kept.
type Request struct {
	Page          int `json:"page"`
	Size          int `json:"size"`
	StorePageSize int `json:"store_page_size"`
	Offset        int `json:"offset"`
}

// Split holds the requests to issue against each store, in fetch order.
type Split struct {
	Chromosomes []Request `json:"chromosomes"`
	Scaffolds   []Request `json:"scaffolds"`
}

// Empty reports whether no store needs to be queried.
func (s Split) Empty() bool {
	return len(s.Chromosomes) == 0 && len(s.Scaffolds) == 0
}

// SplitPage splits the logical page req over chromosomeTotal chromosomes followed by an
// unknown number of scaffolds. Scaffold requests past the end of the scaffold store
// simply return short or empty pages.
func SplitPage(chromosomeTotal int64, req models.PageRequest) Split {
	return SplitPageWithin(chromosomeTotal, Unbounded, req)
}

// SplitPageWithin is SplitPage with a known scaffold total. A logical page that starts
// beyond both collections produces no requests.
func SplitPageWithin(chromosomeTotal, scaffoldTotal int64, req models.PageRequest) Split {
	var split Split
	if req.Size <= 0 || req.Page < 0 || chromosomeTotal < 0 {
		return split
	}
	size := int64(req.Size)
	if int64(req.Page) > (math.MaxInt64-size)/size {
		return split
	}

	start := int64(req.Page) * size
	end := start + size

	if start < chromosomeTotal {
		split.Chromosomes = append(split.Chromosomes, Request{
			Page:          req.Page,
			Size:          int(min(end, chromosomeTotal) - start),
			StorePageSize: req.Size,
		})
	}

	// Window in the scaffold store's own coordinates.
	lo := max(start, chromosomeTotal) - chromosomeTotal
	hi := end - chromosomeTotal
	if scaffoldTotal != Unbounded {
		hi = min(hi, scaffoldTotal)
	}
	if hi <= lo {
		return split
	}
	for page := lo / size; page*size < hi; page++ {
		pageStart := page * size
		from := max(lo, pageStart)
		to := min(hi, pageStart+size)
		split.Scaffolds = append(split.Scaffolds, Request{
			Page:          int(page),
			Size:          int(to - from),
			StorePageSize: req.Size,
			Offset:        int(from - pageStart),
		})
	}

	return split
}

// Take trims the items a store returned for req down to the items req contributes.
func Take[T any](req Request, fetched []T) []T {
	if req.Offset >= len(fetched) {
		return nil
	}
	end := min(req.Offset+req.Size, len(fetched))
	return fetched[req.Offset:end]
}
