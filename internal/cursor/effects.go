package cursor

// Effect is a side effect requested by a state transition. Effects are
// applied to the host in the order they were produced.
type Effect interface {
	Kind() string
}

// ScrollBehavior is passed through to the host's scroll primitive.
type ScrollBehavior string

const (
	ScrollAuto   ScrollBehavior = "auto"
	ScrollSmooth ScrollBehavior = "smooth"
)

type Show struct{}

type Hide struct{}

type Move struct {
	X, Y float64
}

type Click struct {
	X, Y float64
}

// Scroll is a vertical scroll. Negative Delta scrolls up.
type Scroll struct {
	Delta    int
	Behavior ScrollBehavior
}

type ModeChanged struct {
	Mode   Mode
	Reason Reason
}

func (Show) Kind() string        { return "show" }
func (Hide) Kind() string        { return "hide" }
func (Move) Kind() string        { return "move" }
func (Click) Kind() string       { return "click" }
func (Scroll) Kind() string      { return "scroll" }
func (ModeChanged) Kind() string { return "mode" }
