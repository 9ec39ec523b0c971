package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/engine"
	"github.com/chazu/ugrid/pkg/kernel"
	"github.com/chazu/ugrid/pkg/kernel/sdfx"
	"github.com/chazu/ugrid/pkg/pipeline"
	"github.com/chazu/ugrid/pkg/tessellate"
)

// colorPalette assigns distinct colors to preview meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

var previewOut string

// previewCmd renders the solids of a script without meshing them.
var previewCmd = &cobra.Command{
	Use:   "preview [script.lisp]",
	Short: "Render the solid of each grid request as a JSON triangle mesh",
	Long: `Evaluates the script and renders the solid behind every defgrid with
marching cubes. Nothing is written to the store. Script errors are reported
in the output with their line numbers rather than failing the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "", "output file (default stdout)")
}

// PreviewMesh is a colored triangle mesh for one grid request.
type PreviewMesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Grid     string    `json:"grid"`
	Color    string    `json:"color"`
}

// PreviewError is a script error with its source position, when known.
type PreviewError struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// PreviewResult is the document written by the preview command.
type PreviewResult struct {
	Meshes []PreviewMesh  `json:"meshes"`
	Errors []PreviewError `json:"errors"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	res := preview(cmd.Context(), pipeline.New(nil, sdfx.New(), pipeline.WithLogger(logger)), string(source))

	w := cmd.OutOrStdout()
	if previewOut != "" {
		f, err := os.Create(previewOut)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return nil
}

// preview evaluates source and renders every grid request. Failures end up
// in the result's Errors; meshes are only produced for a clean scene.
func preview(ctx context.Context, b *pipeline.Builder, source string) PreviewResult {
	res := PreviewResult{
		Meshes: []PreviewMesh{},
		Errors: []PreviewError{},
	}

	scene, err := b.Scene(ctx, source)
	if err != nil {
		logger.Debug("preview scene failed", zap.Error(err))
		res.Errors = previewErrors(err)
		return res
	}

	meshes, err := tessellate.Meshes(scene, b.Kernel())
	if err != nil {
		res.Errors = append(res.Errors, PreviewError{Message: "tessellation failed: " + err.Error()})
		return res
	}
	for i, m := range meshes {
		res.Meshes = append(res.Meshes, PreviewMesh{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Grid:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return res
}

// previewErrors flattens err, keeping the position of each script error.
func previewErrors(err error) []PreviewError {
	var out []PreviewError
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		if errors.Is(err, pipeline.ErrScript) || errors.Is(err, pipeline.ErrInvalidScene) {
			return
		}
		var ee engine.EvalError
		if errors.As(err, &ee) {
			out = append(out, PreviewError{Line: ee.Line, Col: ee.Col, Message: ee.Message})
			return
		}
		out = append(out, PreviewError{Message: err.Error()})
	}
	walk(err)
	if len(out) == 0 {
		out = append(out, PreviewError{Message: err.Error()})
	}
	return out
}

// writeMeshes encodes meshes as JSON to path, or to stdout when path is empty.
func writeMeshes(stdout io.Writer, path string, meshes []*kernel.Mesh) error {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := json.NewEncoder(w).Encode(meshes); err != nil {
		return fmt.Errorf("failed to encode meshes: %w", err)
	}
	return nil
}
