package diagramfile

import (
	"fmt"
	"strconv"
	"strings"
)

// Layout represents editor view metadata stored as layout.toml. The block
// model itself lives in diagram.json; this file only carries what the
// editor needs to restore its viewport.
type Layout struct {
	Version int        `toml:"version"`
	Editor  EditorMeta `toml:"editor"`
}

// EditorMeta contains editor-specific settings.
type EditorMeta struct {
	CanvasOffsetX int `toml:"canvas_offset_x"`
	CanvasOffsetY int `toml:"canvas_offset_y"`
	Cols          int `toml:"cols"`
	Rows          int `toml:"rows"`
}

// DefaultLayout returns the standard canvas configuration.
func DefaultLayout() *Layout {
	return &Layout{
		Version: 1,
		Editor:  EditorMeta{Cols: DefaultCols, Rows: DefaultRows},
	}
}

// GenerateLayout creates layout.toml content.
func GenerateLayout(l *Layout) string {
	var sb strings.Builder

	sb.WriteString("[layout]\n")
	sb.WriteString(fmt.Sprintf("version = %d\n", l.Version))
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	sb.WriteString(fmt.Sprintf("canvas_offset_x = %d\n", l.Editor.CanvasOffsetX))
	sb.WriteString(fmt.Sprintf("canvas_offset_y = %d\n", l.Editor.CanvasOffsetY))
	sb.WriteString(fmt.Sprintf("cols = %d\n", l.Editor.Cols))
	sb.WriteString(fmt.Sprintf("rows = %d\n", l.Editor.Rows))

	return sb.String()
}

// ParseLayout parses layout.toml content.
// Simple parser that doesn't require an external TOML library.
func ParseLayout(text string) (*Layout, error) {
	layout := DefaultLayout()

	var currentSection string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = line[1 : len(line)-1]
			continue
		}

		// Key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch currentSection {
		case "layout":
			if key == "version" {
				layout.Version, _ = strconv.Atoi(value)
			}
		case "editor":
			switch key {
			case "canvas_offset_x":
				layout.Editor.CanvasOffsetX, _ = strconv.Atoi(value)
			case "canvas_offset_y":
				layout.Editor.CanvasOffsetY, _ = strconv.Atoi(value)
			case "cols":
				layout.Editor.Cols, _ = strconv.Atoi(value)
			case "rows":
				layout.Editor.Rows, _ = strconv.Atoi(value)
			}
		}
	}

	return layout, nil
}
