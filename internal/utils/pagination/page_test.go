package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPaginate(t *testing.T) {
	items := makeItems(17)

	tests := []struct {
		name      string
		page      int
		size      int
		wantItems []int
		wantPage  int
		wantPages int
	}{
		{"first page", 1, 8, []int{1, 2, 3, 4, 5, 6, 7, 8}, 1, 3},
		{"last page holds the remainder", 3, 8, []int{17}, 3, 3},
		{"beyond last clamps to last", 9, 8, []int{17}, 3, 3},
		{"below one clamps to first", 0, 8, []int{1, 2, 3, 4, 5, 6, 7, 8}, 1, 3},
		{"invalid size uses default", 2, 0, []int{9, 10, 11, 12, 13, 14, 15, 16}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, w := Paginate(items, tt.page, tt.size)
			assert.Equal(t, tt.wantItems, got)
			assert.Equal(t, tt.wantPage, w.Page)
			assert.Equal(t, tt.wantPages, w.TotalPages)
			assert.Equal(t, 17, w.TotalItems)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got, w := Paginate([]int{}, 4, 8)
	assert.Empty(t, got)
	assert.Equal(t, 1, w.Page)
	assert.Equal(t, 1, w.TotalPages)
	assert.Equal(t, 0, w.TotalItems)
}
