// ABOUTME: Swipe gesture decisions for the job card stack
// ABOUTME: Converts drags and key presses into skip/save/apply actions on the feed

package swipe

import (
	"context"
	"math"

	"github.com/ParthhMahajann/Nextstep-AI/internal/client"
)

// DefaultThreshold is the drag distance, in gesture units, that commits a swipe
const DefaultThreshold = 100

// Default gesture units per terminal cell. Cells are about twice as tall as
// they are wide.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 20
)

// Action is what a completed gesture does to the current job
type Action int

const (
	None Action = iota
	Skip
	Save
	Apply
)

func (a Action) String() string {
	switch a {
	case Skip:
		return "skip"
	case Save:
		return "save"
	case Apply:
		return "apply"
	}
	return "none"
}

// Offset is the drag displacement in gesture units. Negative DY is upward.
type Offset struct {
	DX, DY float64
}

// Decide maps a release offset to an action. Horizontal wins over vertical.
func Decide(o Offset, threshold float64) Action {
	if math.Abs(o.DX) > threshold {
		if o.DX > 0 {
			return Apply
		}
		return Skip
	}
	if o.DY < -threshold {
		return Save
	}
	return None
}

// Exit returns the unit direction a card leaves the screen in for a
func Exit(a Action) (dx, dy float64) {
	switch a {
	case Skip:
		return -1, 0
	case Apply:
		return 1, 0
	case Save:
		return 0, -1
	}
	return 0, 0
}

// FromKey maps a key name to an action
func FromKey(key string) Action {
	switch key {
	case "left", "h":
		return Skip
	case "right", "l":
		return Apply
	case "up", "k":
		return Save
	}
	return None
}

// Point is a terminal cell position
type Point struct {
	X, Y int
}

// Rect is a terminal cell rectangle
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Controller tracks one drag over the top card
type Controller struct {
	Threshold  float64
	CellWidth  float64
	CellHeight float64

	bounds   Rect
	dragging bool
	start    Point
	offset   Offset
}

// NewController creates a controller; threshold <= 0 uses the default
func NewController(threshold float64) *Controller {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Controller{
		Threshold:  threshold,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
	}
}

// SetBounds records where the top card is drawn
func (c *Controller) SetBounds(r Rect) {
	c.bounds = r
}

// Press starts a drag if p is on the top card
func (c *Controller) Press(p Point) bool {
	if !c.bounds.Contains(p) {
		return false
	}
	c.dragging = true
	c.start = p
	c.offset = Offset{}
	return true
}

// Move updates the live offset during a drag
func (c *Controller) Move(p Point) Offset {
	if !c.dragging {
		return Offset{}
	}
	c.offset = c.toUnits(p)
	return c.offset
}

// Release ends the drag and returns the decided action
func (c *Controller) Release(p Point) Action {
	if !c.dragging {
		return None
	}
	action := Decide(c.toUnits(p), c.Threshold)
	c.Cancel()
	return action
}

// Cancel abandons a drag; the card resets
func (c *Controller) Cancel() {
	c.dragging = false
	c.offset = Offset{}
}

// Dragging reports whether a drag is in progress
func (c *Controller) Dragging() bool {
	return c.dragging
}

// Offset returns the live drag offset
func (c *Controller) Offset() Offset {
	return c.offset
}

// Preview returns the action the current offset would commit to
func (c *Controller) Preview() Action {
	return Decide(c.offset, c.Threshold)
}

// Cells converts the live offset back to whole terminal cells for rendering
func (c *Controller) Cells() (dx, dy int) {
	return int(c.offset.DX / c.CellWidth), int(c.offset.DY / c.CellHeight)
}

func (c *Controller) toUnits(p Point) Offset {
	return Offset{
		DX: float64(p.X-c.start.X) * c.CellWidth,
		DY: float64(p.Y-c.start.Y) * c.CellHeight,
	}
}

// Feed is what HandleSwipe mutates
type Feed interface {
	Current() (client.Job, bool)
	Skip()
	Save(ctx context.Context, job client.Job) error
	Apply(ctx context.Context, job client.Job) error
}

// HandleSwipe applies action to the current job. Drags and key presses
// both end here.
func HandleSwipe(ctx context.Context, f Feed, action Action) error {
	if action == None {
		return nil
	}
	job, ok := f.Current()
	if !ok {
		return nil
	}
	switch action {
	case Skip:
		f.Skip()
		return nil
	case Save:
		return f.Save(ctx, job)
	case Apply:
		return f.Apply(ctx, job)
	}
	return nil
}
