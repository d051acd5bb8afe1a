package main

import (
	"fmt"

	"github.com/jamesainslie/sunburst/cmd/sunburst/tui"
	"github.com/jamesainslie/sunburst/pkg/sunburst/config"
	"github.com/jamesainslie/sunburst/pkg/sunburst/logging"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *config.Config

	rootCmd = &cobra.Command{
		Use:   "sunburst [path]",
		Short: "Show disk usage as a sunburst",
		Long: `Sunburst scans a directory tree and draws it as concentric rings:
each directory's ring is split among its children by size.

By default sunburst opens an interactive view. Hover an arc to see its
size, click to zoom in and press backspace to zoom out.

Examples:
  sunburst                         # Browse the current directory
  sunburst ~/Downloads             # Browse a specific directory
  sunburst scan -o json /var       # Print usage as JSON
  sunburst render -f usage.svg .   # Write an SVG image
  sunburst config show             # Show configuration`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runInteractive,
	}
)

func init() {
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/sunburst/config.yaml)")
	pf.StringSliceP("exclude", "e", nil, "exclude paths or patterns (can be repeated)")
	pf.Bool("cross-mounts", false, "descend into other filesystems")
	pf.String("estimate", "", "progress estimate: statfs, count or none")
	pf.Int("max-levels", 0, "number of rings to lay out")
	pf.Float64("min-angle", 0, "smallest arc in degrees whose children are laid out")
	pf.String("colorer", "", "arc colors: angle, type or name")
	pf.BoolP("verbose", "v", false, "debug output on stderr")
	pf.BoolP("quiet", "q", false, "no progress or log output on stderr")

	bindFlag("exclude", "exclude")
	bindFlag("cross_mounts", "cross-mounts")
	bindFlag("estimate", "estimate")
	bindFlag("layout.max_levels", "max-levels")
	bindFlag("layout.min_paint_angle", "min-angle")
	bindFlag("render.colorer", "colorer")
	bindFlag("verbose", "verbose")
	bindFlag("quiet", "quiet")
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// setup loads configuration and starts logging. The interactive view keeps
// log records in memory instead of writing them to stderr.
func setup(cmd *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	return initLogging(cmd == rootCmd)
}

func loadConfig() error {
	loaded, err := config.LoadFrom(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func initLogging(tuiMode bool) error {
	lc, err := cfg.LogConfig()
	if err != nil {
		return err
	}
	switch {
	case viper.GetBool("quiet"):
	case viper.GetBool("verbose"):
		lc.ConsoleLevel = "debug"
		lc.Level = "debug"
	default:
		lc.ConsoleLevel = "error"
	}
	lc.TUIMode = tuiMode
	if err := logging.Init(lc); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// scanRoot returns the directory named on the command line, or the
// configured default.
func scanRoot(args []string) (string, error) {
	path := cfg.DefaultPath
	if len(args) > 0 {
		path = args[0]
	}
	return config.ExpandPath(path)
}

// scanOptions builds scanner options for root from the loaded configuration.
func scanOptions(root string) (scanner.Options, error) {
	mode, err := scanner.ParseEstimateMode(cfg.Estimate)
	if err != nil {
		return scanner.Options{}, err
	}
	return scanner.Options{
		Root:         root,
		Exclude:      cfg.Exclude,
		CrossMounts:  cfg.CrossMounts,
		Estimate:     mode,
		ProgressStep: cfg.ProgressStep,
	}, nil
}

func runInteractive(_ *cobra.Command, args []string) error {
	root, err := scanRoot(args)
	if err != nil {
		return err
	}
	opts, err := scanOptions(root)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Scan:    opts,
		Painter: cfg.Layout,
		Colorer: cfg.Render.Colorer,
	})
}
