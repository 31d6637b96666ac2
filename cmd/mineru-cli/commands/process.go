package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tom832/MinerU/cmd/mineru-cli/batch"
	"github.com/tom832/MinerU/cmd/mineru-cli/ui"
	"github.com/tom832/MinerU/internal/app"
	"github.com/tom832/MinerU/internal/config"
	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
)

var (
	processImages      bool
	processOutDir      string
	processConcurrency int
	processDriver      string
)

var processCmd = &cobra.Command{
	Use:   "process FILE...",
	Short: "Convert documents to Markdown",
	Long: `Convert PDF and image files to Markdown. Each document is written to
<out>/<name>/<name>.md; with --images the extracted images are written next to
it so the Markdown links resolve.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVarP(&processImages, "images", "i", false, "also write extracted images")
	processCmd.Flags().StringVarP(&processOutDir, "out", "o", "output", "output directory")
	processCmd.Flags().IntVarP(&processConcurrency, "concurrency", "j", 1, "number of documents processed at once")
	processCmd.Flags().StringVar(&processDriver, "engine", "", "engine driver (mineru or native), overrides config")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadLocal(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if processDriver != "" {
		cfg.Engine.Driver = processDriver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "mineru-cli",
	})

	stack, err := app.Build(cfg, logger)
	if err != nil {
		return err
	}

	ui.Section("Document Conversion")
	ui.Info("Engine: %s", stack.Engine.Name())
	ui.Info("Output: %s", processOutDir)

	opts := batch.Options{
		OutDir:       processOutDir,
		ImageDir:     cfg.Workspace.ImageSubdir,
		ReturnImages: processImages,
		Concurrency:  processConcurrency,
	}

	start := time.Now()
	var items []batch.Item
	if len(args) == 1 {
		spin := ui.NewSpinner(fmt.Sprintf("Processing %s...", filepath.Base(args[0])))
		spin.Start()
		items = batch.Run(ctx, stack.Orchestrator, args, opts, nil)
		spin.Stop()
	} else {
		bar := ui.NewProgressBar(len(args), "Processing")
		items = batch.Run(ctx, stack.Orchestrator, args, opts, func(batch.Item) { bar.Add(1) })
		bar.Finish()
	}

	failed := report(items)
	ui.Info("Finished %d file(s) in %s", len(items), ui.FormatDuration(time.Since(start)))

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(items))
	}
	return nil
}

func report(items []batch.Item) int {
	failed := 0
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		switch {
		case domain.IsType(it.Err, domain.ErrorTypeValidation):
			failed++
			ui.Warning("%s: skipped, %s", it.Source, domain.Describe(it.Err))
			rows = append(rows, []string{filepath.Base(it.Source), "skipped", "-", "-"})
			continue
		case it.Err != nil:
			failed++
			ui.Error("%s: %v", it.Source, it.Err)
			rows = append(rows, []string{filepath.Base(it.Source), "failed", "-", ui.FormatDuration(it.Duration)})
			continue
		}
		ui.Success("%s -> %s", it.Source, it.Markdown)
		rows = append(rows, []string{filepath.Base(it.Source), "ok", strconv.Itoa(it.Images), ui.FormatDuration(it.Duration)})
	}

	if len(items) > 1 {
		ui.Section("Summary")
		ui.Table([]string{"File", "Status", "Images", "Duration"}, rows)
	}
	return failed
}
