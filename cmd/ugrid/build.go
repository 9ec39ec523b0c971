package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/kernel/sdfx"
	"github.com/chazu/ugrid/pkg/pipeline"
)

var (
	buildCells    string
	buildEncoding string
	buildCellSize float64
)

// buildCmd evaluates a script and stores its grids.
var buildCmd = &cobra.Command{
	Use:   "build [script.lisp]",
	Short: "Mesh every grid request of a script into the repository",
	Long: `Evaluates the script, validates the scene, voxelizes each defgrid
request, meshes it, and writes the grid to the array store. The manifest is
rewritten with all grids, old and new.

Example:
  ugrid build block.lisp --cells tet --encoding variable`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildCells, "cells", "", "override cell kind of every request (hex, tet)")
	buildCmd.Flags().StringVar(&buildEncoding, "encoding", "", "override encoding of every request (constant, variable)")
	buildCmd.Flags().Float64Var(&buildCellSize, "cell-size", 0, "override cell size of every request")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	mesh := cfg.Mesh
	if buildCells != "" {
		mesh.Cells = buildCells
	}
	if buildEncoding != "" {
		mesh.Encoding = buildEncoding
	}
	if buildCellSize > 0 {
		mesh.CellSize = buildCellSize
	}

	r, store, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	b := pipeline.New(r, sdfx.New(), pipeline.WithLogger(logger), pipeline.WithMeshConfig(mesh))
	grids, err := b.Build(ctx, string(source))
	if err != nil {
		if len(grids) > 0 {
			// Keep the grids already in the store reachable.
			if serr := r.SaveManifest(cfg.Store.Manifest, cfg.Store.Path); serr != nil {
				logger.Error("failed to save partial manifest", zap.Error(serr))
			}
		}
		return err
	}
	if err := r.SaveManifest(cfg.Store.Manifest, cfg.Store.Path); err != nil {
		return err
	}

	logger.Info("build complete",
		zap.String("script", args[0]),
		zap.Int("grids", len(grids)),
		zap.String("manifest", cfg.Store.Manifest))
	for _, g := range grids {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d cells\t%d faces\t%d nodes\n",
			g.Title(), g.UUID(), g.CellCount(), g.FaceCount(), g.NodeCount())
	}
	return nil
}
