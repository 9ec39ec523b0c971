package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/kernel"
	"github.com/chazu/ugrid/pkg/surface"
)

var surfaceOut string

// surfaceCmd exports the boundary of a stored grid.
var surfaceCmd = &cobra.Command{
	Use:   "surface [title]",
	Short: "Export the boundary surface of a grid as a JSON triangle mesh",
	Args:  cobra.ExactArgs(1),
	RunE:  runSurface,
}

func init() {
	surfaceCmd.Flags().StringVarP(&surfaceOut, "output", "o", "", "output file (default stdout)")
}

func runSurface(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, store, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := lookupGrid(r, args[0])
	if err != nil {
		return err
	}
	if err := g.LoadGeometry(ctx); err != nil {
		return err
	}
	defer g.UnloadGeometry()

	m, err := surface.Extract(ctx, g)
	if err != nil {
		return err
	}
	logger.Debug("extracted surface", zap.String("grid", g.Title()), zap.Int("triangles", m.TriangleCount()))
	return writeMeshes(cmd.OutOrStdout(), surfaceOut, []*kernel.Mesh{m})
}
