// Package main provides the desktop pointer plugin.
// It drives the system pointer with xdotool on Linux and cliclick on macOS.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type pointParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type scrollParams struct {
	Delta    int    `json:"delta"`
	Behavior string `json:"behavior"`
}

// wheelStep is the number of pixels one wheel notch is taken to scroll.
const wheelStep = 40

var errUnsupported = errors.New("not supported on this platform")

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	args, err := command(runtime.GOOS, req)
	if err != nil {
		writeResponse(err)
		return
	}
	writeResponse(run(args))
}

// command builds the tool invocation for req on goos.
func command(goos string, req Request) ([]string, error) {
	switch req.Action {
	case "move", "click":
		var p pointParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
		x, y := pixel(p.X), pixel(p.Y)
		switch goos {
		case "linux":
			if req.Action == "move" {
				return []string{"xdotool", "mousemove", x, y}, nil
			}
			return []string{"xdotool", "mousemove", x, y, "click", "1"}, nil
		case "darwin":
			if req.Action == "move" {
				return []string{"cliclick", "m:" + x + "," + y}, nil
			}
			return []string{"cliclick", "c:" + x + "," + y}, nil
		}

	case "scroll":
		var p scrollParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, fmt.Errorf("failed to parse params: %w", err)
		}
		if p.Delta == 0 {
			return nil, errors.New("delta is required")
		}
		if goos == "linux" {
			button := "5" // down
			if p.Delta < 0 {
				button = "4"
			}
			return []string{"xdotool", "click", "--repeat", strconv.Itoa(notches(p.Delta)), button}, nil
		}

	default:
		return nil, fmt.Errorf("unknown action: %s", req.Action)
	}

	return nil, fmt.Errorf("%s: %w", req.Action, errUnsupported)
}

func pixel(v float64) string {
	return strconv.Itoa(int(math.Round(math.Max(0, v))))
}

func notches(delta int) int {
	n := int(math.Abs(float64(delta))) / wheelStep
	if n < 1 {
		n = 1
	}
	return n
}

func run(args []string) error {
	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", args[0], err, string(out))
	}
	return nil
}

// writeResponse writes a success response, or an error response when err is set.
func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
