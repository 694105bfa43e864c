// Package cmd contains all CLI commands for Quartet.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quartetgames/quartet/internal/catalog"
	"github.com/quartetgames/quartet/internal/config"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/progress"
	"github.com/quartetgames/quartet/internal/tui"
	"github.com/quartetgames/quartet/internal/tui/views"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quartet",
	Short: "Four daily puzzles in your terminal",
	Long: `Quartet bundles four daily puzzle games:

  Tandem  - decode emoji pairs into words
  Mini    - a 5x5 crossword
  Reel    - group sixteen movies by their hidden connections
  Cryptic - one cryptic clue a day

Each game publishes one puzzle per day. Today's puzzles are free;
the archive opens with a subscription flag in settings.yaml.

Running 'quartet' without arguments launches the interactive TUI.`,
	RunE: runTUI,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.config/quartet/settings.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig resolves the settings path and wires the environment.
func initConfig() {
	if cfgFile != "" {
		viper.Set("settings_path", cfgFile)
	} else {
		path, err := config.SettingsPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("settings_path", path)
	}

	viper.SetEnvPrefix("QUARTET")
	viper.AutomaticEnv()
}

// loadSettings reads the user settings, defaulting on a missing file.
func loadSettings() (*config.Settings, error) {
	return config.Load(viper.GetString("settings_path"))
}

// buildCatalog assembles the puzzle sources: local pack first when
// configured, then the remote catalog.
func buildCatalog(settings *config.Settings) (*catalog.Store, error) {
	var sources []catalog.Source
	if settings.PackPath != "" {
		pack, err := catalog.LoadPack(settings.PackPath)
		if err != nil {
			return nil, fmt.Errorf("loading puzzle pack: %w", err)
		}
		sources = append(sources, pack)
	}
	sources = append(sources, catalog.NewHTTPSource(settings.CatalogURL))
	return catalog.NewStore(sources...), nil
}

// openProgress opens the layered progress store: a memory tier in front
// of the SQLite database.
func openProgress(settings *config.Settings) (progress.Store, error) {
	path, err := settings.DataPath()
	if err != nil {
		return nil, fmt.Errorf("resolving data path: %w", err)
	}
	db, err := progress.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return progress.NewLayered(progress.NewMemory(), db), nil
}

// buildDeps wires everything a TUI session needs.
func buildDeps() (views.Deps, error) {
	settings, err := loadSettings()
	if err != nil {
		return views.Deps{}, err
	}
	cat, err := buildCatalog(settings)
	if err != nil {
		return views.Deps{}, err
	}
	prog, err := openProgress(settings)
	if err != nil {
		return views.Deps{}, err
	}
	return views.Deps{
		Catalog:  cat,
		Progress: prog,
		Saver:    progress.SessionSaver{Store: prog},
		Registry: engine.NewRegistry(),
		Settings: settings,
	}, nil
}

// runTUI launches the interactive shell on today's puzzles.
func runTUI(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Progress.Close()

	p := tea.NewProgram(tui.NewApp(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
