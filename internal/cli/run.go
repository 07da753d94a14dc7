package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/iceman-twitch/wow-auto/internal/automation"
	"github.com/iceman-twitch/wow-auto/internal/hotkey"
	"github.com/iceman-twitch/wow-auto/internal/sequence"
	"github.com/iceman-twitch/wow-auto/internal/settings"
	"github.com/iceman-twitch/wow-auto/internal/window"
)

func newRunCmd() *cobra.Command {
	var (
		file        string
		seqNames    []string
		windows     []string
		toggleKey   string
		dryRun      bool
		startPaused bool
		poll        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a sequence file and run it until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := settings.Load(settings.DefaultPath())
			if err != nil {
				log.Warnw("could not read settings, using defaults", "error", err)
				saved = settings.Default()
			}

			// Flags win; saved settings fill the gaps.
			if file == "" {
				file = saved.JSONPath
			}
			if file == "" {
				return errors.New("no sequence file: pass --file or run once with one")
			}
			if len(seqNames) == 0 {
				seqNames = saved.SelectedSequences
			}
			if !cmd.Flags().Changed("window") {
				windows = saved.WindowTitles
			}
			if !cmd.Flags().Changed("toggle-key") {
				toggleKey = saved.ToggleKey
			}

			seqs, err := sequence.LoadFile(file)
			if err != nil {
				return err
			}

			saved.JSONPath = file
			saved.SelectedSequences = seqNames
			saved.ToggleKey = toggleKey
			saved.WindowTitles = windows
			saved.DryRun = dryRun
			if err := saved.Save(settings.DefaultPath()); err != nil {
				log.Warnw("could not persist settings", "error", err)
			}

			var inj automation.Injector = automation.NewRobotInjector()
			gateTitles := windows
			if dryRun {
				inj = automation.NewNopInjector(log)
				// Dry runs validate the file anywhere, focus or not.
				gateTitles = nil
			}
			gate := window.New(window.NewRobotQuery(), gateTitles, window.WithLogger(log))
			exec := automation.NewExecutor(inj, automation.WithExecutorLogger(log))

			opts := []automation.RunnerOption{
				automation.WithRunnerLogger(log),
				automation.WithPollInterval(poll),
			}
			if len(seqNames) > 0 {
				opts = append(opts, automation.WithSelected(seqNames))
			}
			if startPaused {
				opts = append(opts, automation.StartPaused())
			}
			runner := automation.NewRunner(seqs, exec, gate, opts...)

			if toggleKey != "" && toggleKey != "none" {
				hk := hotkey.New(toggleKey, func() { runner.Toggle() }, log)
				hk.Start()
				defer hk.Stop()
			}

			ctx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stopSignals()

			if err := runner.Start(ctx); err != nil {
				return err
			}
			log.Infow("session started",
				"file", file,
				"sequences", len(runner.Snapshot().Sequences),
				"windows", gateTitles,
				"toggle_key", toggleKey,
				"dry_run", dryRun)

			runner.Wait()
			runner.Stop()
			log.Infow("session stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "sequence JSON file")
	cmd.Flags().StringArrayVar(&seqNames, "seq", nil, "sequence name to run (repeatable, default all)")
	cmd.Flags().StringArrayVar(&windows, "window", nil, "target window title substring (repeatable)")
	cmd.Flags().StringVar(&toggleKey, "toggle-key", "f8", `global pause/resume key ("none" disables)`)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log actions instead of injecting input")
	cmd.Flags().BoolVar(&startPaused, "start-paused", false, "arm the session but wait for the toggle key")
	cmd.Flags().DurationVar(&poll, "poll", automation.DefaultPollInterval, "backoff while paused or the window is inactive")
	return cmd
}
