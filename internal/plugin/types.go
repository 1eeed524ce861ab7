// Package plugin runs external executables that act on the desktop on behalf
// of the cursor controller. Plugins speak one JSON request on stdin and one
// JSON response on stdout.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest `json:"manifest"`
	Path       string   `json:"path"`
	Executable string   `json:"-"`
}

// Pointer actions understood by desktop input plugins.
const (
	ActionShow   = "show"
	ActionHide   = "hide"
	ActionMove   = "move"
	ActionClick  = "click"
	ActionScroll = "scroll"
)

// PointParams carries screen coordinates for move and click.
type PointParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScrollParams carries a vertical scroll amount in pixels.
type ScrollParams struct {
	Delta    int    `json:"delta"`
	Behavior string `json:"behavior"`
}
