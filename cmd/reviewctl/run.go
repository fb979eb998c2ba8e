package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ReviewSheet/internal/application"
	"github.com/JonMunkholm/ReviewSheet/internal/config"
	"github.com/JonMunkholm/ReviewSheet/internal/core"
	"github.com/JonMunkholm/ReviewSheet/internal/logging"
)

// pollInterval is how often progress messages are printed.
const pollInterval = 250 * time.Millisecond

type runOptions struct {
	from    int
	to      int
	files   []string
	dataDir string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run pipeline stages",
		Long: `Run the pipeline from --from to --to (inclusive; 0 means the first or
last stage). --files limits stage one to the named source files.

Ctrl-C asks the job to stop at its next safe point; a second Ctrl-C exits
immediately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.dataDir != "" {
				cfg.Pipeline.DataDir = opts.dataDir
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app, err := application.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			req := core.Request{StartStage: opts.from, EndStage: opts.to, TargetFiles: opts.files}
			return runJob(ctx, app.Service, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.from, "from", 0, "first stage to run (1-4)")
	cmd.Flags().IntVar(&opts.to, "to", 0, "last stage to run (1-4)")
	cmd.Flags().StringSliceVar(&opts.files, "files", nil, "source files for stage one (comma separated)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "override PIPELINE_DATA_DIR")
	return cmd
}

// runJob starts one job, streams its progress to out and waits for it.
// The first interrupt requests cancellation.
func runJob(ctx context.Context, svc *core.Service, req core.Request, out io.Writer) error {
	id, err := svc.Start(ctx, req)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}
	fmt.Fprintf(out, "job %s started\n", id)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan core.Job, 1)
	go func() {
		job, _ := svc.Wait(context.Background(), id)
		done <- job
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	printed := 0
	flush := func() {
		job, err := svc.Status(id)
		if err != nil {
			return
		}
		for _, m := range job.Messages[min(printed, len(job.Messages)):] {
			fmt.Fprintf(out, "  %s\n", m)
		}
		printed = max(printed, len(job.Messages))
	}

	interrupted := false
	for {
		select {
		case <-ticker.C:
			flush()
		case <-sigCh:
			if interrupted {
				return errors.New("interrupted")
			}
			interrupted = true
			if err := svc.RequestCancel(id); err != nil {
				fmt.Fprintln(out, core.FormatUserError(err))
				continue
			}
			fmt.Fprintln(out, "cancellation requested; waiting for the current step")
		case job := <-done:
			flush()
			return report(out, job)
		}
	}
}

func report(out io.Writer, job core.Job) error {
	switch job.Status {
	case core.StatusCompleted:
		fmt.Fprintf(out, "job %s completed\n", job.ID)
		if job.ResultsFile != "" {
			fmt.Fprintf(out, "results: %s\n", job.ResultsFile)
		}
		return nil
	case core.StatusCancelled:
		fmt.Fprintf(out, "job %s cancelled during %s\n", job.ID, job.CurrentStage)
		return core.ErrCancelled
	default:
		return fmt.Errorf("job %s %s: %s", job.ID, job.Status, job.ErrorMessage)
	}
}
