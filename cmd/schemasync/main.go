package main

import (
	"fmt"
	"os"

	"github.com/kayabey/schemasync/internal/config"
	"github.com/kayabey/schemasync/internal/database"
	"github.com/kayabey/schemasync/internal/fieldtype"
	"github.com/kayabey/schemasync/internal/metadata"
	"github.com/kayabey/schemasync/internal/rebuild"
	"github.com/kayabey/schemasync/pkg/logger"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Reconcile a declarative entity model with a live database schema",
	Long:  `schemasync reads entity metadata, diffs it against the connected database's current structure and executes the statements needed to close the gap.`,
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [entity...]",
	Short: "Diff metadata against the live schema and execute the changes",
	RunE:  runRebuild,
}

var diffCmd = &cobra.Command{
	Use:   "diff [entity...]",
	Short: "Print the statements a rebuild would execute, without running them",
	RunE:  runDiff,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the schemasync version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("schemasync " + version)
	},
}

var (
	configPath string
	verbose    bool
)

func init() {
	rebuildCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rebuildCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rebuildCmd.MarkFlagRequired("config")

	diffCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration file")
	diffCmd.Flags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	diffCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(func() {
		rootCmd.SilenceUsage = true
		rootCmd.SilenceErrors = true
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runRebuild(cmd *cobra.Command, args []string) error {
	rebuilder, conn, err := setup(true)
	if err != nil {
		return err
	}
	defer conn.Close()

	result, err := rebuilder.Rebuild(args)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("rebuild completed with %d failed statements", len(result.Failures))
	}
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	rebuilder, conn, err := setup(false)
	if err != nil {
		return err
	}
	defer conn.Close()

	target, err := rebuilder.Target(args)
	if err != nil {
		return err
	}
	current, err := rebuilder.Current()
	if err != nil {
		return err
	}

	statements := rebuilder.DiffSQL(current, target)
	if len(statements) == 0 {
		fmt.Println("-- schema is up to date")
		return nil
	}
	for _, stmt := range statements {
		fmt.Println(stmt + ";")
	}
	return nil
}

func setup(showProgress bool) (*rebuild.Rebuilder, *database.Connection, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load config: %w", err)
	}

	log := logger.NewLogger(verbose)

	conn, err := database.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	meta, err := metadata.Load(cfg.Metadata.Path)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("cannot load metadata: %w", err)
	}

	types := fieldtype.NewRegistry(conn.Dialect)
	fieldtype.RegisterBuiltins(types)
	if err := registerConfiguredTypes(types, cfg); err != nil {
		conn.Close()
		return nil, nil, err
	}

	rebuilder, err := rebuild.New(rebuild.Options{
		Config:       cfg,
		Metadata:     meta,
		Types:        types,
		Hooks:        rebuild.DefaultHookRegistry(),
		Conn:         conn,
		Logger:       log,
		ShowProgress: showProgress && !verbose,
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	return rebuilder, conn, nil
}

func registerConfiguredTypes(types *fieldtype.Registry, cfg *config.Config) error {
	for name, ft := range cfg.FieldTypes {
		err := types.RegisterOverride(fieldtype.Definition{
			Name:       name,
			NativeType: ft.Native,
			Length:     ft.Length,
			Precision:  ft.Precision,
			Scale:      ft.Scale,
		})
		if err != nil {
			return fmt.Errorf("invalid fieldTypes entry: %w", err)
		}
	}
	return nil
}
