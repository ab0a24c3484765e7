package composer

// DragItem describes the item being dragged within the composition.
type DragItem struct {
	PromptID int64 `json:"promptId"`
	Index    int   `json:"index"`
}

// HoverTarget describes the item under the pointer during a drag.
// OffsetY is the pointer position relative to the top of the target and
// Height is the target's rendered height.
type HoverTarget struct {
	Index   int     `json:"index"`
	OffsetY float64 `json:"offsetY"`
	Height  float64 `json:"height"`
}

// Hover applies one hover tick. The dragged item moves only once the pointer
// crosses the middle of the target: below it when dragging down, above it
// when dragging up. It returns a new descriptor reflecting the item's
// position after the tick, and whether a move happened.
func (c *Composition) Hover(drag DragItem, target HoverTarget) (DragItem, bool) {
	from, to := drag.Index, target.Index
	if from == to {
		return drag, false
	}
	middle := target.Height / 2
	if from < to && target.OffsetY < middle {
		return drag, false
	}
	if from > to && target.OffsetY > middle {
		return drag, false
	}
	if !c.Move(from, to) {
		return drag, false
	}
	return DragItem{PromptID: drag.PromptID, Index: to}, true
}
