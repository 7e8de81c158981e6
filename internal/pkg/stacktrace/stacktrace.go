// Package stacktrace trims runtime stack dumps down to this module's frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalFrames returns "internal/<pkg>/<file>.go:<line>" for every frame of
// a debug.Stack dump that points into an internal package, innermost first.
func InternalFrames(stack []byte) []string {
	frames := []string{}

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := sc.Text()
		// File lines are tab indented: "\t/abs/path/file.go:42 +0x1d".
		if !strings.HasPrefix(line, "\t") {
			continue
		}

		loc, _, _ := strings.Cut(strings.TrimSpace(line), " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.LastIndex(loc, marker)
		if idx < 0 {
			continue
		}
		frames = append(frames, loc[idx+1:])
	}

	return frames
}
