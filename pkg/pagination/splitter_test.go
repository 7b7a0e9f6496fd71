package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/contig-alias/pkg/models"
)

type pageSize struct {
	Page int
	Size int
}

func pageSizes(reqs []Request) []pageSize {
	out := make([]pageSize, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, pageSize{Page: r.Page, Size: r.Size})
	}
	return out
}

func TestSplitPage_ReferenceTable(t *testing.T) {
	tests := []struct {
		name        string
		total       int64
		page, size  int
		chromosomes []pageSize
		scaffolds   []pageSize
	}{
		{
			name:        "only chromosomes",
			total:       27,
			page:        1,
			size:        10,
			chromosomes: []pageSize{{1, 10}},
			scaffolds:   []pageSize{},
		},
		{
			name:        "only scaffolds",
			total:       27,
			page:        3,
			size:        10,
			chromosomes: []pageSize{},
			scaffolds:   []pageSize{{0, 7}, {1, 3}},
		},
		{
			name:        "chromosomes and scaffolds combined",
			total:       27,
			page:        2,
			size:        10,
			chromosomes: []pageSize{{2, 7}},
			scaffolds:   []pageSize{{0, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitPage(tt.total, models.PageRequest{Page: tt.page, Size: tt.size})
			assert.Equal(t, tt.chromosomes, pageSizes(split.Chromosomes))
			assert.Equal(t, tt.scaffolds, pageSizes(split.Scaffolds))
		})
	}
}

func TestSplitPage_StoreQueries(t *testing.T) {
	split := SplitPage(27, models.PageRequest{Page: 3, Size: 10})

	require.Len(t, split.Scaffolds, 2)
	assert.Equal(t, Request{Page: 0, Size: 7, StorePageSize: 10, Offset: 3}, split.Scaffolds[0])
	assert.Equal(t, Request{Page: 1, Size: 3, StorePageSize: 10, Offset: 0}, split.Scaffolds[1])
}

func TestSplitPage_InvalidRequests(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		req   models.PageRequest
	}{
		{name: "zero size", total: 27, req: models.PageRequest{Page: 0, Size: 0}},
		{name: "negative size", total: 27, req: models.PageRequest{Page: 0, Size: -3}},
		{name: "negative page", total: 27, req: models.PageRequest{Page: -1, Size: 10}},
		{name: "negative total", total: -5, req: models.PageRequest{Page: 0, Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, SplitPage(tt.total, tt.req).Empty())
		})
	}
}

func TestSplitPageWithin_BeyondEnd(t *testing.T) {
	split := SplitPageWithin(27, 13, models.PageRequest{Page: 4, Size: 10})
	assert.True(t, split.Empty())

	split = SplitPageWithin(0, 0, models.PageRequest{Page: 0, Size: 10})
	assert.True(t, split.Empty())
}

func TestSplitPageWithin_FinalShortPage(t *testing.T) {
	split := SplitPageWithin(27, 5, models.PageRequest{Page: 3, Size: 10})
	assert.Empty(t, split.Chromosomes)
	assert.Equal(t, []pageSize{{0, 2}}, pageSizes(split.Scaffolds))
}

func TestSplitPage_HugePageDoesNotOverflow(t *testing.T) {
	split := SplitPage(27, models.PageRequest{Page: int(^uint(0) >> 1), Size: 1000})
	assert.True(t, split.Empty())
}

func TestTake(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, Take(Request{Size: 7, Offset: 3}, items))
	assert.Equal(t, []int{0, 1, 2}, Take(Request{Size: 3}, items))
	assert.Equal(t, []int{8, 9}, Take(Request{Size: 5, Offset: 8}, items))
	assert.Nil(t, Take(Request{Size: 5, Offset: 12}, items))
}

// store simulates a backing store that only answers page-index/page-size queries.
type store []string

func (s store) page(page, size int) []string {
	from := page * size
	if from >= len(s) {
		return nil
	}
	return s[from:min(from+size, len(s))]
}

func materialize(prefix string, n int) store {
	s := make(store, n)
	for i := range s {
		s[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return s
}

func fetch(split Split, chromosomes, scaffolds store) []string {
	var out []string
	for _, r := range split.Chromosomes {
		out = append(out, Take(r, chromosomes.page(r.Page, r.StorePageSize))...)
	}
	for _, r := range split.Scaffolds {
		out = append(out, Take(r, scaffolds.page(r.Page, r.StorePageSize))...)
	}
	return out
}

// TestSplitPage_MatchesMaterializedSlice compares every split against slicing the
// materialized merged order directly.
func TestSplitPage_MatchesMaterializedSlice(t *testing.T) {
	for tc := 0; tc <= 31; tc++ {
		for sc := 0; sc <= 23; sc++ {
			chromosomes := materialize("chr", tc)
			scaffolds := materialize("scf", sc)
			merged := append(append([]string{}, chromosomes...), scaffolds...)

			for size := 1; size <= 12; size++ {
				for page := 0; page*size <= len(merged)+2*size; page++ {
					req := models.PageRequest{Page: page, Size: size}
					from := min(page*size, len(merged))
					want := merged[from:min(from+size, len(merged))]

					for _, split := range []Split{
						SplitPage(int64(tc), req),
						SplitPageWithin(int64(tc), int64(sc), req),
					} {
						got := fetch(split, chromosomes, scaffolds)
						if len(want) == 0 {
							if len(got) != 0 {
								t.Fatalf("TC=%d SC=%d PN=%d PS=%d: expected empty page, got %v", tc, sc, page, size, got)
							}
							continue
						}
						if !assert.Equal(t, want, got, "TC=%d SC=%d PN=%d PS=%d", tc, sc, page, size) {
							return
						}
					}

					bounded := SplitPageWithin(int64(tc), int64(sc), req)
					if len(want) == 0 && !bounded.Empty() {
						t.Fatalf("TC=%d SC=%d PN=%d PS=%d: expected no requests beyond the end, got %+v", tc, sc, page, size, bounded)
					}
					if !assert.Equal(t, bounded, SplitPageWithin(int64(tc), int64(sc), req)) {
						return
					}
				}
			}
		}
	}
}

func TestSplitPage_RequestsNeverExceedPageSize(t *testing.T) {
	for tc := int64(0); tc <= 40; tc++ {
		for size := 1; size <= 15; size++ {
			for page := 0; page <= 8; page++ {
				split := SplitPage(tc, models.PageRequest{Page: page, Size: size})
				total := 0
				for _, r := range append(append([]Request{}, split.Chromosomes...), split.Scaffolds...) {
					require.Positive(t, r.Size)
					require.LessOrEqual(t, r.Offset+r.Size, r.StorePageSize)
					require.Equal(t, size, r.StorePageSize)
					total += r.Size
				}
				require.Equal(t, size, total, "TC=%d PN=%d PS=%d", tc, page, size)
				require.LessOrEqual(t, len(split.Chromosomes), 1)
				require.LessOrEqual(t, len(split.Scaffolds), 2)
			}
		}
	}
}
