package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quartetgames/quartet/internal/server"
)

var (
	serveBind string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve puzzles and leaderboards over HTTP",
	Long: `Run the Quartet HTTP server. It exposes the puzzle catalog, the
archive listing and the local leaderboard; another quartet instance can
point its catalog_url at this server.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveBind, "bind", "0.0.0.0", "address to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	cat, err := buildCatalog(settings)
	if err != nil {
		return err
	}
	prog, err := openProgress(settings)
	if err != nil {
		return err
	}
	defer prog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Bind:    serveBind,
		Port:    servePort,
		Verbose: viper.GetBool("verbose"),
		Handle:  settings.Handle,
	}, cat, prog)
	return srv.Serve(ctx)
}
