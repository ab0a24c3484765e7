package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHover(t *testing.T) {
	cases := []struct {
		name    string
		from    int
		target  HoverTarget
		moved   bool
		wantIDs []int64
	}{
		{"same index", 1, HoverTarget{Index: 1, OffsetY: 40, Height: 40}, false, []int64{1, 2, 3}},
		{"down above middle", 0, HoverTarget{Index: 1, OffsetY: 10, Height: 40}, false, []int64{1, 2, 3}},
		{"down past middle", 0, HoverTarget{Index: 1, OffsetY: 30, Height: 40}, true, []int64{2, 1, 3}},
		{"down exactly middle", 0, HoverTarget{Index: 2, OffsetY: 20, Height: 40}, true, []int64{2, 3, 1}},
		{"up below middle", 2, HoverTarget{Index: 1, OffsetY: 30, Height: 40}, false, []int64{1, 2, 3}},
		{"up past middle", 2, HoverTarget{Index: 0, OffsetY: 5, Height: 40}, true, []int64{3, 1, 2}},
		{"target out of range", 0, HoverTarget{Index: 5, OffsetY: 40, Height: 40}, false, []int64{1, 2, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newComposition(t, nil, 1, 2, 3)
			drag := DragItem{PromptID: int64(tc.from + 1), Index: tc.from}

			next, moved := c.Hover(drag, tc.target)

			assert.Equal(t, tc.moved, moved)
			assert.Equal(t, tc.wantIDs, promptIDs(c))
			if moved {
				assert.Equal(t, tc.target.Index, next.Index)
				assert.Equal(t, drag.PromptID, next.PromptID)
			} else {
				assert.Equal(t, drag, next)
			}
		})
	}
}

func TestHover_DescriptorIsFresh(t *testing.T) {
	c := newComposition(t, nil, 1, 2, 3)
	drag := DragItem{PromptID: 1, Index: 0}

	next, moved := c.Hover(drag, HoverTarget{Index: 1, OffsetY: 39, Height: 40})
	assert.True(t, moved)
	assert.Equal(t, 0, drag.Index)

	// A second tick over the same target with the updated descriptor is a no-op.
	_, moved = c.Hover(next, HoverTarget{Index: 1, OffsetY: 39, Height: 40})
	assert.False(t, moved)
	assert.Equal(t, []int64{2, 1, 3}, promptIDs(c))
}
