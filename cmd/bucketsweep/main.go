// Command bucketsweep prunes folders and files from object-store buckets.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/perigee-io/bucketsweep"
	"github.com/perigee-io/bucketsweep/internal/config"
	"github.com/perigee-io/bucketsweep/sweeptypes"
)

var (
	configPath  string
	envName     string
	dryRun      bool
	filesOnly   bool
	foldersOnly bool
	discover    bool
	baseFolder  string
	concurrency int
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bucketsweep [paths...]",
		Short: "Prune folders and files from object-store buckets",
		Long: `bucketsweep deletes folder prefixes and files from object-store
buckets, with folder verification guards, dry-run support, and
bounded-concurrency listing and deletion.

Paths ending in /* delete depth-1 files only, leaving structure intact.`,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "bucketsweep.yaml", "Path to the environment catalog")
	flags.StringVarP(&envName, "env", "e", "", "Environment to operate on (default from config)")
	flags.BoolVarP(&dryRun, "dry-run", "n", false, "Simulate without mutating anything")
	flags.BoolVar(&filesOnly, "files-only", false, "Delete only depth-1 files under each path")
	flags.BoolVar(&foldersOnly, "folders-only", false, "Delete only verified folder prefixes")
	flags.BoolVarP(&discover, "discover", "d", false, "Discover verified folders instead of deleting")
	flags.StringVar(&baseFolder, "base", "", "Base folder for --discover")
	flags.IntVar(&concurrency, "concurrency", 0, "Delete batch size (default 10)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagsMutuallyExclusive("files-only", "folders-only")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	env, err := cfg.Env(envName)
	if err != nil {
		return err
	}

	client, err := buildClient(env, log)
	if err != nil {
		return err
	}

	if discover {
		return runDiscover(cmd, client)
	}

	if len(args) == 0 {
		return fmt.Errorf("no target paths given (or use --discover)")
	}

	targets := make([]sweeptypes.Target, 0, len(args))
	for _, path := range args {
		targets = append(targets, sweeptypes.Target{
			Path:   path,
			Mode:   bucketsweep.ResolveMode(path, filesOnly, foldersOnly),
			DryRun: dryRun,
		})
	}

	summary := client.PruneAll(cmd.Context(), targets)
	renderSummary(summary)

	if summary.Failed() {
		os.Exit(1)
	}
	return nil
}

func buildClient(env *config.Environment, log zerolog.Logger) (*bucketsweep.Client, error) {
	opts := []sweeptypes.Option{
		bucketsweep.WithBucket(env.Bucket),
		bucketsweep.WithEndpoint(env.Endpoint),
		bucketsweep.WithRegion(env.Region),
		bucketsweep.WithAPIKey(env.APIKey),
		bucketsweep.WithCredentials(env.AccessKey, env.SecretKey),
		bucketsweep.WithLogger(log),
		bucketsweep.WithProgress(printProgress),
	}
	if env.Transport == config.TransportS3 {
		opts = append(opts,
			bucketsweep.WithTransport(sweeptypes.TransportS3),
			bucketsweep.WithForcePathStyle(true),
		)
	}
	if env.SyncProfile != "" {
		opts = append(opts, bucketsweep.WithSyncProfile(env.SyncProfile))
	}
	if env.FileExtensions != nil {
		opts = append(opts, bucketsweep.WithFileExtensions(env.FileExtensions))
	}
	if env.PageWindow > 0 {
		opts = append(opts, bucketsweep.WithPageWindow(env.PageWindow))
	}
	if env.PageLimit > 0 {
		opts = append(opts, bucketsweep.WithPageLimit(env.PageLimit))
	}
	if env.Timeout > 0 {
		opts = append(opts, bucketsweep.WithTimeout(env.Timeout.Std()))
	}
	switch {
	case concurrency > 0:
		opts = append(opts, bucketsweep.WithBatchSize(concurrency))
	case env.BatchSize > 0:
		opts = append(opts, bucketsweep.WithBatchSize(env.BatchSize))
	}
	return bucketsweep.New(opts...)
}

func runDiscover(cmd *cobra.Command, client *bucketsweep.Client) error {
	folders, err := client.DiscoverFolders(cmd.Context(), baseFolder)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Println("No verified folders found.")
		return nil
	}
	fmt.Printf("Found %d verified folder(s) in %s:\n", len(folders), client.Bucket())
	fmt.Println(bucketsweep.FormatFolders(folders))
	return nil
}

func renderSummary(summary *sweeptypes.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Path", "Mode", "Deleted", "Failed", "Status", "Took"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Deleted", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Took", Align: text.AlignRight},
	})

	var deleted, failed int
	for _, tr := range summary.Targets {
		row := table.Row{tr.Target.Path, string(tr.Target.Mode)}
		switch {
		case tr.Err != nil:
			row = append(row, "-", "-", "error: "+tr.Err.Error(), "-")
		case tr.Result.Skipped:
			row = append(row, 0, 0, "skipped", formatDuration(tr.Result.Duration))
		default:
			status := "ok"
			if tr.Target.DryRun {
				status = "dry-run"
			}
			row = append(row,
				humanize.Comma(int64(tr.Result.Deleted)),
				humanize.Comma(int64(tr.Result.Failed)),
				status,
				formatDuration(tr.Result.Duration),
			)
			deleted += tr.Result.Deleted
			failed += tr.Result.Failed
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"Total", "",
		humanize.Comma(int64(deleted)), humanize.Comma(int64(failed)), "",
		formatDuration(summary.Duration)})
	t.Render()

	for _, tr := range summary.Targets {
		if tr.Result == nil {
			continue
		}
		for _, item := range tr.Result.Errors {
			fmt.Fprintf(os.Stderr, "  failed: %s: %v\n", item.Path, item.Err)
		}
	}
}

func printProgress(deleted, failed int) {
	fmt.Printf("\rdeleted %s, failed %s", humanize.Comma(int64(deleted)), humanize.Comma(int64(failed)))
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
