// Command exportcheck validates a selection export and answers id lookups
// typed on stdin.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"comboforge/combo"
	"comboforge/export"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var maxNumber int
	var interactive bool
	cmd := &cobra.Command{
		Use:          "exportcheck <file>",
		Short:        "Validate a selection export and look up records by id",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := export.Read(f, maxNumber)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "loaded %s valid records\n", humanize.Comma(int64(len(records))))
			if !interactive {
				return nil
			}
			fmt.Fprintln(out, "enter ids (EOF to quit)")
			return lookupLoop(cmd.InOrStdin(), out, records)
		},
	}
	cmd.Flags().IntVar(&maxNumber, "max-number", combo.DefaultMaxNumber, "largest valid number")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "answer id lookups from stdin")
	return cmd
}

func lookupLoop(in io.Reader, out io.Writer, records []export.Record) error {
	byID := make(map[int]combo.Numbers, len(records))
	for _, r := range records {
		byID[r.ID] = r.Numbers
	}
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		id, err := strconv.Atoi(query)
		if err != nil {
			fmt.Fprintf(out, "not an id: %q\n", query)
			continue
		}
		n, ok := byID[id]
		if !ok {
			fmt.Fprintln(out, "no such id")
			continue
		}
		fmt.Fprintln(out, export.FormatRecord(id, n))
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
