package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
	"github.com/lex00/hedgedoc-aws-go/internal/differ"
	"github.com/lex00/hedgedoc-aws-go/internal/validation"
)

// newWatchCmd creates the "watch" subcommand for re-planning on config changes.
func newWatchCmd(g *globalOptions) *cobra.Command {
	var (
		debounce     time.Duration
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the plan when the configuration changes",
		Long: `Watch monitors the stack file and the .env files and renders the plan again
whenever one of them changes.

The watch command:
- Checks the plan's references after every change
- Prints what changed compared to the previous plan
- Debounces rapid changes to avoid excessive re-planning

Examples:
    hedgedoc-aws watch
    hedgedoc-aws watch -o plan.json
    hedgedoc-aws watch --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), g, watchOptions{
				debounce:     debounce,
				outputFormat: outputFormat,
				outputFile:   outputFile,
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format for the plan: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the plan to this file on every change")

	return cmd
}

type watchOptions struct {
	debounce     time.Duration
	outputFormat string
	outputFile   string
}

// runWatch monitors the configuration files and re-plans on changes.
func runWatch(ctx context.Context, g *globalOptions, opts watchOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	files, dirs, err := watchedFiles(append([]string{g.configFile}, g.envFiles...))
	if err != nil {
		return fmt.Errorf("failed to resolve files: %w", err)
	}
	// Editors may replace files on save; watch the directories and
	// filter events by name.
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	for _, f := range sortedKeys(files) {
		fmt.Printf("Watching: %s\n", f)
	}

	fmt.Println("Rendering initial plan...")
	w := &planWatcher{g: g, opts: opts}
	w.replan(ctx)
	g.reloadEnv = true

	var debounceTimer *time.Timer
	replanChan := make(chan struct{}, 1)

	fmt.Println("\nWatching for changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !files[abs] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(opts.debounce, func() {
				select {
				case replanChan <- struct{}{}:
				default:
				}
			})

		case <-replanChan:
			fmt.Printf("\n[%s] Change detected, re-planning...\n", time.Now().Format("15:04:05"))
			w.replan(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-ctx.Done():
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

// watchedFiles returns the absolute paths of files and the set of
// directories holding them.
func watchedFiles(paths []string) (map[string]bool, []string, error) {
	files := make(map[string]bool)
	seenDirs := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, err
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDirs[dir] {
			seenDirs[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return files, dirs, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// planWatcher keeps the last good plan so each change can be summarized.
type planWatcher struct {
	g    *globalOptions
	opts watchOptions
	last *hedgedoc.Template
}

// replan renders the plan and reports problems or differences. Errors are
// printed, never returned, so the watch keeps running.
func (w *planWatcher) replan(ctx context.Context) {
	cfg, err := w.g.loadOffline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return
	}
	t, _, err := buildPlan(ctx, cfg, w.g.logger(slog.LevelWarn))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plan error: %v\n", err)
		return
	}

	if problems := validation.CheckReferences(t); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "Error: %s\n", p)
		}
		return
	}

	if w.last != nil {
		result, err := differ.Compare(w.last, t, differ.Options{IgnoreOrder: true})
		if err == nil {
			s := result.Summary
			fmt.Printf("%d added, %d removed, %d modified\n", s.Added, s.Removed, s.Modified)
		}
	}
	w.last = t

	if w.opts.outputFile == "" {
		fmt.Println("Plan successful")
		fmt.Printf("Planned %d resources\n", len(t.Resources))
		return
	}
	data, err := encodeTemplate(t, w.opts.outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output error: %v\n", err)
		return
	}
	if err := os.WriteFile(w.opts.outputFile, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		return
	}
	fmt.Printf("Plan successful, wrote %s\n", w.opts.outputFile)
}
