package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gitaid/internal/app"
	"gitaid/internal/config"
	"gitaid/internal/github"
	"gitaid/internal/logger"
	"gitaid/internal/review"
	"gitaid/internal/tui"
)

const version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gitaid",
	Short: "Browse your GitHub pull requests and request AI reviews",
	Long:  "GitAid is a terminal dashboard for browsing your GitHub repositories, picking an open pull request, and requesting an AI-generated review from the GitAid backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return launch()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print gitaid version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "gitaid version %s\n", version)
	},
}

// Run executes the root command and returns a process exit code.
func Run() int {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file")
	rootCmd.AddCommand(versionCmd)
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func launch() error {
	cfg, err := config.New(configPath)
	if err != nil {
		return fmt.Errorf("cannot initialize config: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer log.Sync()

	hosting := github.New(cfg.GitHub.APIURL, cfg.GitHub.Token, cfg.HTTP.Timeout, log)
	backend := review.NewClient(cfg.Backend.URL, cfg.HTTP.Timeout, log)
	state := app.NewState()

	p := tea.NewProgram(tui.New(state, hosting, backend, cfg.HTTP.Timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("gitaid: %w", err)
	}
	return nil
}
