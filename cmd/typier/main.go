// Package main provides the CLI entrypoint for typier.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/larmaysee/typier-sub002/internal/config"
	"github.com/larmaysee/typier-sub002/internal/localstore"
	"github.com/larmaysee/typier-sub002/internal/model"
	"github.com/larmaysee/typier-sub002/internal/remote"
	"github.com/larmaysee/typier-sub002/internal/report"
	"github.com/larmaysee/typier-sub002/internal/syncqueue"

	repo "github.com/larmaysee/typier-sub002/internal/repository"
)

const (
	defaultSyncInterval = 30
	defaultInitialDelay = 5
	defaultBackoff      = 5
	defaultMaxRetries   = 3
)

var (
	remoteEndpoint string
	remoteAPIKey   string

	syncInterval     int
	syncInitialDelay int
	syncBackoff      int
	syncMaxRetries   int

	testsUser   string
	testsMode   string
	testsLang   string
	testsLimit  int
	testsOffset int

	boardLang      string
	boardMode      string
	boardTimeFrame string
	boardLimit     int

	deleteUser string

	syncWatch bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typier",
		Short:         "Typing trainer result store and sync tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&remoteEndpoint, "endpoint", "", "remote store endpoint URL")
	rootCmd.PersistentFlags().IntVar(&syncInterval, "sync-interval", defaultSyncInterval, "seconds between background drains")
	rootCmd.PersistentFlags().IntVar(&syncInitialDelay, "sync-initial-delay", defaultInitialDelay, "seconds before the first drain")
	rootCmd.PersistentFlags().IntVar(&syncBackoff, "sync-backoff", defaultBackoff, "seconds between retries of a failed operation")
	rootCmd.PersistentFlags().IntVar(&syncMaxRetries, "sync-max-retries", defaultMaxRetries, "attempts before a queued operation is dropped")

	rootCmd.AddCommand(newTestsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newCompetitionCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app bundles the wired collaborators for one command run.
type app struct {
	store *localstore.SQLite
	repo  *repo.Repository
	queue *syncqueue.Processor
}

func (a *app) close() {
	a.queue.Stop()
	if err := a.store.Close(); err != nil {
		logErrf("failed to close cache: %v\n", err)
	}
}

func newApp(cmd *cobra.Command) (*app, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logErrf("failed to load .env: %v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "sync-interval", &syncInterval, fileCfg.Sync.IntervalSec)
	applyIntConfig(cmd, "sync-initial-delay", &syncInitialDelay, fileCfg.Sync.InitialDelaySec)
	applyIntConfig(cmd, "sync-backoff", &syncBackoff, fileCfg.Sync.BackoffSec)
	applyIntConfig(cmd, "sync-max-retries", &syncMaxRetries, fileCfg.Sync.MaxRetries)
	applyStringConfig(cmd, "endpoint", &remoteEndpoint, fileCfg.Remote.Endpoint)
	if remoteEndpoint == "" {
		remoteEndpoint = os.Getenv("TYPIER_REMOTE_ENDPOINT")
	}
	remoteAPIKey = os.Getenv("TYPIER_API_KEY")
	if fileCfg.Remote.APIKey != nil {
		remoteAPIKey = *fileCfg.Remote.APIKey
	}

	store, err := localstore.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	var client remote.Client = remote.Offline{}
	if remoteEndpoint != "" {
		client = remote.NewHTTPClient(remoteEndpoint, remoteAPIKey)
	}

	queue := syncqueue.New(store,
		syncqueue.RemoteExecutor{Client: client, Collection: repo.Collection},
		syncqueue.Config{
			Interval:     time.Duration(syncInterval) * time.Second,
			InitialDelay: time.Duration(syncInitialDelay) * time.Second,
			Backoff:      time.Duration(syncBackoff) * time.Second,
			MaxRetries:   syncMaxRetries,
		})

	return &app{
		store: store,
		repo:  repo.New(store, client, queue),
		queue: queue,
	}, nil
}

func newTestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "List cached and remote tests for a user",
		RunE:  runTestsCmd,
	}
	cmd.Flags().StringVar(&testsUser, "user", "", "user id (default: $TYPIER_USER)")
	cmd.Flags().StringVar(&testsMode, "mode", "", "filter by mode (normal, practice, competition)")
	cmd.Flags().StringVar(&testsLang, "lang", "", "filter by language code")
	cmd.Flags().IntVar(&testsLimit, "limit", 20, "maximum rows")
	cmd.Flags().IntVar(&testsOffset, "offset", 0, "rows to skip")
	return cmd
}

func runTestsCmd(cmd *cobra.Command, _ []string) error {
	userID, err := resolveUser(testsUser)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	filter := model.TestFilter{
		Mode:     model.TestMode(testsMode),
		Language: testsLang,
		Limit:    testsLimit,
		Offset:   testsOffset,
	}
	tests, err := a.repo.GetUserTests(cmd.Context(), userID, filter)
	if err != nil {
		return err
	}
	return report.RenderTests(os.Stdout, tests)
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard",
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&boardLang, "lang", "", "filter by language code")
	cmd.Flags().StringVar(&boardMode, "mode", "", "filter by mode")
	cmd.Flags().StringVar(&boardTimeFrame, "timeframe", "all", "day, week, month or all")
	cmd.Flags().IntVar(&boardLimit, "limit", 10, "maximum rows")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	filter := model.LeaderboardFilter{
		Language:  boardLang,
		Mode:      model.TestMode(boardMode),
		TimeFrame: model.TimeFrame(boardTimeFrame),
		Limit:     boardLimit,
	}
	entries, err := a.repo.GetLeaderboard(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return report.RenderLeaderboard(os.Stdout, entries)
}

func newCompetitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "competition <id>",
		Short: "Show the entries of a competition",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompetitionCmd,
	}
}

func runCompetitionCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.repo.GetCompetitionEntries(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return report.RenderTests(os.Stdout, entries)
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <test-id>",
		Short: "Delete a test locally and remotely",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
	cmd.Flags().StringVar(&deleteUser, "user", "", "user id (default: $TYPIER_USER)")
	return cmd
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser(deleteUser)
	if err != nil {
		return err
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.repo.DeleteUserTest(cmd.Context(), userID, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Drain the retry queue and show sync status",
		RunE:  runSyncCmd,
	}
	cmd.Flags().BoolVar(&syncWatch, "watch", false, "keep draining on the background schedule until interrupted")
	return cmd
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.repo.SyncNow(ctx); err != nil {
		return err
	}
	if syncWatch {
		a.queue.Start()
		logErrf("Watching; press Ctrl-C to stop.\n")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
	}
	status, err := a.repo.GetSyncStatus(ctx)
	if err != nil {
		return err
	}
	return report.RenderSyncStatus(os.Stdout, status)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print config path and a template",
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	fmt.Printf("Config path: %s\n\n", path)
	fmt.Print(defaultConfigTemplate())
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typier configuration
# Uncomment a value to enable it. CLI flags override config values.

[remote]
# endpoint = ""            # Remote store URL; empty keeps everything local
# api-key = ""             # Overrides $TYPIER_API_KEY

[sync]
# interval = %d            # Seconds between background drains
# initial-delay = %d        # Seconds before the first drain
# backoff = %d              # Seconds between retries of a failed operation
# max-retries = %d          # Attempts before a queued operation is dropped

[session]
# allow-backspace = true   # Permit deleting the last typed character
# time-limit = 0           # Session time limit in seconds, 0 for none
`,
		defaultSyncInterval,
		defaultInitialDelay,
		defaultBackoff,
		defaultMaxRetries,
	)
}

func resolveUser(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("TYPIER_USER"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("--user or $TYPIER_USER is required")
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
