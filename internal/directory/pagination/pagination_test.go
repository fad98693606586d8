package pagination

import (
	"testing"

	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 1},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{12, 5, 3},
		{20, 20, 1},
		{21, 10, 3},
		{7, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "TotalPages(%d, %d)", tt.total, tt.size)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		state     State
		wantItems []int
		wantPage  int
		wantPages int
		wantRange string
	}{
		{
			name:      "first of three",
			n:         12,
			state:     State{Page: 1, Size: 5},
			wantItems: []int{1, 2, 3, 4, 5},
			wantPage:  1,
			wantPages: 3,
			wantRange: "1 - 5 of 12",
		},
		{
			name:      "partial last page",
			n:         12,
			state:     State{Page: 3, Size: 5},
			wantItems: []int{11, 12},
			wantPage:  3,
			wantPages: 3,
			wantRange: "11 - 12 of 12",
		},
		{
			name:      "page past the end resets to 1",
			n:         12,
			state:     State{Page: 4, Size: 5},
			wantItems: []int{1, 2, 3, 4, 5},
			wantPage:  1,
			wantPages: 3,
			wantRange: "1 - 5 of 12",
		},
		{
			name:      "non-positive page resets to 1",
			n:         3,
			state:     State{Page: 0, Size: 10},
			wantItems: []int{1, 2, 3},
			wantPage:  1,
			wantPages: 1,
			wantRange: "1 - 3 of 3",
		},
		{
			name:      "empty collection",
			n:         0,
			state:     State{Page: 2, Size: 5},
			wantItems: []int{},
			wantPage:  1,
			wantPages: 1,
			wantRange: "0 - 0 of 0",
		},
		{
			name:      "zero size falls back to default",
			n:         7,
			state:     State{Page: 2, Size: 0},
			wantItems: []int{6, 7},
			wantPage:  2,
			wantPages: 2,
			wantRange: "6 - 7 of 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(seq(tt.n), tt.state)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.n, p.Total)
			assert.Equal(t, tt.wantRange, p.Range())
		})
	}
}

// TestPaginateReconstructs checks that concatenating every page yields the
// input with no gaps or duplicates, for a range of sizes.
func TestPaginateReconstructs(t *testing.T) {
	for n := 0; n <= 45; n++ {
		for _, size := range Sizes {
			items := seq(n)
			first := Paginate(items, State{Page: 1, Size: size})
			assert.Equal(t, max(1, (n+size-1)/size), first.TotalPages)

			var all []int
			for page := 1; page <= first.TotalPages; page++ {
				p := Paginate(items, State{Page: page, Size: size})
				require.Equal(t, page, p.Page)
				all = append(all, p.Items...)
			}
			if n == 0 {
				assert.Empty(t, all)
				continue
			}
			assert.Equal(t, items, all, "n=%d size=%d", n, size)
		}
	}
}

func TestPaginateCopiesItems(t *testing.T) {
	items := seq(6)
	p := Paginate(items, State{Page: 1, Size: 5})
	p.Items[0] = 100
	assert.Equal(t, 1, items[0])
}

func TestPageFlags(t *testing.T) {
	p := Paginate(seq(12), State{Page: 1, Size: 5})
	assert.False(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.False(t, p.Empty())
	assert.Equal(t, State{Page: 1, Size: 5}, p.State())

	p = Paginate(seq(12), State{Page: 3, Size: 5})
	assert.True(t, p.HasPrev())
	assert.False(t, p.HasNext())

	p = Paginate([]int{}, State{Page: 1, Size: 5})
	assert.False(t, p.HasPrev())
	assert.False(t, p.HasNext())
	assert.True(t, p.Empty())
}

func TestStateNavigation(t *testing.T) {
	s := State{Page: 2, Size: 5}

	assert.Equal(t, 1, s.First().Page)
	assert.Equal(t, 1, s.First().First().Page, "first is idempotent")
	assert.Equal(t, 3, s.Last(3).Page)
	assert.Equal(t, 3, s.Last(3).Last(3).Page, "last is idempotent")
	assert.Equal(t, 1, s.Last(0).Page)

	assert.Equal(t, 1, s.Prev().Page)
	assert.Equal(t, 1, s.Prev().Prev().Page, "prev is floored at 1")

	assert.Equal(t, 3, s.Next(3).Page)
	assert.Equal(t, 3, s.Next(3).Next(3).Page, "next is capped at the last page")
	assert.Equal(t, 1, State{Page: 1, Size: 5}.Next(1).Page)

	assert.Equal(t, 5, s.Next(3).Size, "navigation keeps the size")
}

func TestStateClamp(t *testing.T) {
	assert.Equal(t, 2, State{Page: 2, Size: 5}.Clamp(3).Page)
	assert.Equal(t, 3, State{Page: 3, Size: 5}.Clamp(3).Page)
	assert.Equal(t, 1, State{Page: 4, Size: 5}.Clamp(3).Page)
	assert.Equal(t, 1, State{Page: -1, Size: 5}.Clamp(3).Page)
}

func TestNewStateAndWithSize(t *testing.T) {
	for _, size := range Sizes {
		s, err := NewState(size)
		require.NoError(t, err)
		assert.Equal(t, State{Page: 1, Size: size}, s)
	}

	_, err := NewState(7)
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	s, err := State{Page: 3, Size: 5}.WithSize(20)
	require.NoError(t, err)
	assert.Equal(t, State{Page: 3, Size: 20}, s)
	assert.Equal(t, 1, Paginate(seq(12), s).Page, "page 3 of 20-per-page does not exist")

	s, err = State{Page: 3, Size: 5}.WithSize(15)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	assert.Equal(t, State{Page: 3, Size: 5}, s)
}
