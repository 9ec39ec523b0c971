package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/ugrid/pkg/grid"
)

var (
	inspectLoad bool
	inspectTag  string
)

// inspectCmd lists the objects of the repository.
var inspectCmd = &cobra.Command{
	Use:   "inspect [title]",
	Short: "List the data objects of the repository",
	Long: `Prints every data object in the manifest. With --load each grid's
geometry is loaded from the store, which checks the stored topology, and its
bounding box is reported. --tag restricts the listing to one object type,
for example --tag UnstructuredGridRepresentation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectLoad, "load", false, "load geometry and report the bounding box")
	inspectCmd.Flags().StringVar(&inspectTag, "tag", "", "only list objects with this tag")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	r, store, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "TITLE\tTAG\tUUID\tCELLS\tFACES\tNODES\tSHAPE\tBOUNDS")

	objects := r.Objects()
	if inspectTag != "" {
		objects = r.ByTag(inspectTag)
	}
	for _, obj := range objects {
		if len(args) == 1 && obj.Title() != args[0] {
			continue
		}
		g, ok := obj.(*grid.UnstructuredGrid)
		if !ok {
			fmt.Fprintf(w, "%s\t%s\t%s\t\t\t\t\t\n", obj.Title(), obj.XMLTag(), obj.UUID())
			continue
		}
		bounds := "-"
		if inspectLoad && g.HasGeometry() {
			if err := g.LoadGeometry(ctx); err != nil {
				return fmt.Errorf("grid %q: %w", g.Title(), err)
			}
			lo, hi, err := g.BoundingBox(ctx)
			g.UnloadGeometry()
			if err != nil {
				return fmt.Errorf("grid %q: %w", g.Title(), err)
			}
			bounds = fmt.Sprintf("%.3g..%.3g", lo, hi)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			g.Title(), g.XMLTag(), g.UUID(), g.CellCount(), g.FaceCount(), g.NodeCount(), g.CellShape(), bounds)
	}
	return nil
}
