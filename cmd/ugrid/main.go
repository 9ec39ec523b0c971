// Command ugrid builds unstructured polyhedral grids from Lisp scripts and
// inspects the grids stored in a repository.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/arraystore"
	"github.com/chazu/ugrid/pkg/config"
	"github.com/chazu/ugrid/pkg/crs"
	"github.com/chazu/ugrid/pkg/grid"
	"github.com/chazu/ugrid/pkg/logging"
	"github.com/chazu/ugrid/pkg/repo"
)

var (
	// Global flags
	configPath string
	storePath  string
	manifest   string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ugrid",
	Short: "Unstructured polyhedral grid builder",
	Long: `ugrid evaluates Lisp scripts describing solids and grid requests,
meshes each request into hexahedra or tetrahedra, and stores the resulting
unstructured grids in a SQLite array store described by a YAML manifest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if storePath != "" {
			cfg.Store.Path = storePath
		}
		if manifest != "" {
			cfg.Store.Manifest = manifest
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".ugrid/config.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "SQLite array store (overrides config)")
	rootCmd.PersistentFlags().StringVar(&manifest, "manifest", "", "repository manifest (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(buildCmd, inspectCmd, surfaceCmd, previewCmd)
}

// decoders rebuilds every data object kind the tool writes.
func decoders() map[string]repo.Decoder {
	return map[string]repo.Decoder{
		crs.XMLTag:  crs.Decode,
		grid.XMLTag: grid.NewDecoder(grid.WithLogger(logger)),
	}
}

// openRepository opens the configured store and loads the manifest when it
// exists. The caller closes the store.
func openRepository(ctx context.Context) (*repo.Repository, *arraystore.SQLiteStore, error) {
	store, err := arraystore.OpenSQLite(ctx, cfg.Store.Path, arraystore.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	r := repo.New(store)
	if _, err := os.Stat(cfg.Store.Manifest); os.IsNotExist(err) {
		return r, store, nil
	}
	m, err := repo.ReadManifest(cfg.Store.Manifest)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	if err := r.Load(m, decoders()); err != nil {
		store.Close()
		return nil, nil, err
	}
	return r, store, nil
}

// lookupGrid returns the grid titled title.
func lookupGrid(r *repo.Repository, title string) (*grid.UnstructuredGrid, error) {
	g, ok := r.Lookup(title).(*grid.UnstructuredGrid)
	if !ok {
		return nil, fmt.Errorf("no grid titled %q (have %v)", title, r.Titles())
	}
	return g, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
