// Command pointmapctl inspects and maintains the cells persisted by a
// pointmap.Map.
//
// Usage:
//
//	pointmapctl --root ./save ls
//	pointmapctl --root ./save cat 3 -- -7
//	pointmapctl --root ./save check
//	pointmapctl --root ./save migrate --to-bolt world.db
//
// Negative coordinates must follow "--" so they are not parsed as flags.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/andreyvit/pointmap"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type config struct {
	Root   string `yaml:"root"`
	Bolt   string `yaml:"bolt,omitempty"`
	Ext    string `yaml:"ext,omitempty"`
	Format string `yaml:"format,omitempty"`
}

type app struct {
	cfg        config
	configFile string
	verbose    bool
	logger     *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{
		cfg: config{
			Root:   pointmap.DefaultRootName,
			Ext:    pointmap.DefaultExt,
			Format: "yaml",
		},
	}

	rootCmd := &cobra.Command{
		Use:           "pointmapctl",
		Short:         "Inspect and maintain persisted pointmap cells",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file with root, bolt, ext and format")
	pf.StringVar(&a.cfg.Root, "root", a.cfg.Root, "directory holding the cells")
	pf.StringVar(&a.cfg.Bolt, "bolt", "", "use the given Bolt file instead of --root")
	pf.StringVar(&a.cfg.Ext, "ext", a.cfg.Ext, "cell file extension")
	pf.StringVar(&a.cfg.Format, "format", a.cfg.Format, "output format for decoded values: yaml or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log every operation")

	rootCmd.AddCommand(
		newLsCmd(a),
		newCatCmd(a),
		newCheckCmd(a),
		newRmCmd(a),
		newMigrateCmd(a),
	)
	return rootCmd
}

// prepare merges the config file under the flags set explicitly.
func (a *app) prepare(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if a.configFile == "" {
		return nil
	}
	raw, err := os.ReadFile(a.configFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var fileCfg config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return fmt.Errorf("config %s: %w", a.configFile, err)
	}

	flags := cmd.Flags()
	if fileCfg.Root != "" && !flags.Changed("root") {
		a.cfg.Root = fileCfg.Root
	}
	if fileCfg.Bolt != "" && !flags.Changed("bolt") {
		a.cfg.Bolt = fileCfg.Bolt
	}
	if fileCfg.Ext != "" && !flags.Changed("ext") {
		a.cfg.Ext = fileCfg.Ext
	}
	if fileCfg.Format != "" && !flags.Changed("format") {
		a.cfg.Format = fileCfg.Format
	}
	a.logger.LogAttrs(cmd.Context(), slog.LevelDebug, "pointmapctl: config loaded", slog.String("file", a.configFile), slog.String("root", a.cfg.Root), slog.String("bolt", a.cfg.Bolt))
	return nil
}

func (a *app) openStorage() (pointmap.Storage, error) {
	if a.cfg.Bolt != "" {
		return pointmap.OpenBoltStorage(a.cfg.Bolt, pointmap.BoltOptions{})
	}
	st, err := os.Stat(a.cfg.Root)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", a.cfg.Root)
	}
	return pointmap.DirStorage(a.cfg.Root, pointmap.DirOptions{Ext: a.cfg.Ext}), nil
}

func parsePoint(xs, ys string) (pointmap.Point, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return pointmap.Point{}, fmt.Errorf("invalid X %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return pointmap.Point{}, fmt.Errorf("invalid Y %q", ys)
	}
	return pointmap.P(x, y), nil
}

func closeStorage(s pointmap.Storage, w io.Writer) {
	if err := s.Close(); err != nil {
		fmt.Fprintf(w, "warning: closing storage: %v\n", err)
	}
}
