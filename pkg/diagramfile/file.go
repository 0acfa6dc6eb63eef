package diagramfile

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ha1tch/flow-toolkit/pkg/diagram"
)

// WriteFlowFile writes a snapshot to a .flow file.
func WriteFlowFile(path string, snap *diagram.Snapshot, layout *Layout) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteFlow(file, snap, layout)
}

// WriteFlow writes a snapshot to a writer in .flow format: a zip archive
// holding diagram.json (the model) and layout.toml (editor metadata).
func WriteFlow(w io.Writer, snap *diagram.Snapshot, layout *Layout) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	data, err := EncodeSnapshot(snap, true)
	if err != nil {
		return err
	}
	dw, err := zw.Create("diagram.json")
	if err != nil {
		return err
	}
	if _, err := dw.Write(data); err != nil {
		return err
	}

	if layout == nil {
		layout = DefaultLayout()
	}
	lw, err := zw.Create("layout.toml")
	if err != nil {
		return err
	}
	if _, err := lw.Write([]byte(GenerateLayout(layout))); err != nil {
		return err
	}

	return nil
}

// ReadFlowFile reads a snapshot from a .flow file.
func ReadFlowFile(path string) (*diagram.Snapshot, *Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, err
	}

	return ReadFlow(file, info.Size())
}

// ReadFlow reads a snapshot from a reader containing .flow format.
// layout.toml is optional; defaults apply when it is absent.
func ReadFlow(r io.ReaderAt, size int64) (*diagram.Snapshot, *Layout, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, err
	}

	var diagramContent, layoutContent []byte

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, err
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, err
		}

		switch f.Name {
		case "diagram.json":
			diagramContent = data
		case "layout.toml":
			layoutContent = data
		}
	}

	if diagramContent == nil {
		return nil, nil, fmt.Errorf("diagram.json not found in archive")
	}

	snap, err := DecodeSnapshot(diagramContent)
	if err != nil {
		return nil, nil, err
	}

	layout := DefaultLayout()
	if layoutContent != nil {
		layout, err = ParseLayout(string(layoutContent))
		if err != nil {
			return nil, nil, err
		}
	}

	return snap, layout, nil
}

// ReadFlowBytes reads a snapshot from bytes in .flow format.
func ReadFlowBytes(data []byte) (*diagram.Snapshot, *Layout, error) {
	r := bytes.NewReader(data)
	return ReadFlow(r, int64(len(data)))
}
