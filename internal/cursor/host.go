package cursor

// CursorSink draws the on-screen cursor.
type CursorSink interface {
	Show()
	Hide()
	MoveTo(x, y float64)
}

// ScrollSink scrolls the host surface vertically by delta pixels.
type ScrollSink interface {
	ScrollBy(delta int, behavior ScrollBehavior)
}

// ClickSink clicks whatever sits at (x, y) on the host surface.
type ClickSink interface {
	ClickAt(x, y float64)
}

// Host is the full set of capabilities the controller drives. Calls are
// fire-and-forget: implementations handle and log their own failures.
type Host interface {
	CursorSink
	ScrollSink
	ClickSink
}

// Fanout forwards every call to each host in turn.
type Fanout []Host

var _ Host = Fanout(nil)

func (f Fanout) Show() {
	for _, h := range f {
		h.Show()
	}
}

func (f Fanout) Hide() {
	for _, h := range f {
		h.Hide()
	}
}

func (f Fanout) MoveTo(x, y float64) {
	for _, h := range f {
		h.MoveTo(x, y)
	}
}

func (f Fanout) ScrollBy(delta int, behavior ScrollBehavior) {
	for _, h := range f {
		h.ScrollBy(delta, behavior)
	}
}

func (f Fanout) ClickAt(x, y float64) {
	for _, h := range f {
		h.ClickAt(x, y)
	}
}

// Apply performs a single effect against h. ModeChanged has no host
// counterpart and is ignored.
func Apply(h Host, e Effect) {
	switch e := e.(type) {
	case Show:
		h.Show()
	case Hide:
		h.Hide()
	case Move:
		h.MoveTo(e.X, e.Y)
	case Click:
		h.ClickAt(e.X, e.Y)
	case Scroll:
		h.ScrollBy(e.Delta, e.Behavior)
	}
}
