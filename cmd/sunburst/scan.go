package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/sunburst/pkg/sunburst/output"
	"github.com/jamesainslie/sunburst/pkg/sunburst/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory and print its usage",
	Long: `Scan a directory tree and print the sizes of its entries.

Output formats:
  pretty   styled tree for terminals (default)
  plain    tab-aligned text for scripts
  json     one JSON document
  yaml     one YAML document

Press Ctrl+C to stop early; the partial result is still printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringP("output", "o", "pretty", "output format: "+strings.Join(output.Available(), ", "))
	scanCmd.Flags().Int("depth", 1, "directory levels to print below the root")
	scanCmd.Flags().Int("top", 10, "number of largest files to list (0 for none)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	depth, _ := cmd.Flags().GetInt("depth")
	top, _ := cmd.Flags().GetInt("top")

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w: available formats are %v", err, output.Available())
	}

	res, err := scanArgs(cmd, args)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), formatter, output.FromScan(res, depth, top))
}

// scanArgs scans the directory named by args until it finishes or the
// process is interrupted.
func scanArgs(cmd *cobra.Command, args []string) (scanner.Result, error) {
	root, err := scanRoot(args)
	if err != nil {
		return scanner.Result{}, err
	}
	opts, err := scanOptions(root)
	if err != nil {
		return scanner.Result{}, err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress io.Writer
	if !viper.GetBool("quiet") {
		progress = cmd.ErrOrStderr()
	}
	return scanTree(ctx, opts, progress)
}

// scanTree runs one scan. Progress lines go to progress unless it is nil.
// A cancelled scan is not an error; a failed one is.
func scanTree(ctx context.Context, opts scanner.Options, progress io.Writer) (scanner.Result, error) {
	updates := make(chan scanner.Progress, 1)
	opts.OnProgress = func(p scanner.Progress) {
		select {
		case updates <- p:
		default:
		}
	}

	s := scanner.New(opts)
	if err := s.Scan(ctx); err != nil {
		return scanner.Result{}, err
	}

	var res scanner.Result
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		res, err = s.Wait(context.Background())
		return err
	})
	if progress != nil {
		g.Go(func() error {
			printProgress(progress, s.Done(), updates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	if res.State == scanner.StateFailed {
		return res, fmt.Errorf("scanning %s: %w", res.Root, res.Err)
	}
	return res, nil
}

// printProgress rewrites a single status line until done is closed, then
// blanks it.
func printProgress(w io.Writer, done <-chan struct{}, updates <-chan scanner.Progress) {
	last := 0
	for {
		select {
		case p := <-updates:
			line := fmt.Sprintf("%5.1f%%  %s entries  %s  %s",
				p.Fraction*100, humanize.Comma(p.Entries), humanize.IBytes(p.Bytes), p.CurrentPath)
			if len(line) > 100 {
				line = line[:97] + "..."
			}
			fmt.Fprintf(w, "\r%-*s", last, line)
			last = len(line)
		case <-done:
			if last > 0 {
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", last))
			}
			return
		}
	}
}

func write(w io.Writer, f output.Formatter, r *output.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
