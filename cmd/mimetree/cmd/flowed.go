package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mua/message/flowed"
)

var (
	flowedCmd = &cobra.Command{
		Use:   "flowed <file>",
		Short: "Reflow format=flowed text",
		Long: `Reflow format=flowed text read from a file, "-" for standard input. The
text is the body of a text/plain part with the transfer encoding removed.`,
		Args: cobra.ExactArgs(1),
		RunE: RunFlowed,
	}

	flowedWidth   int
	flowedDelSp   bool
	flowedDiff    bool
	flowedUnstuff bool
	flowedQuote   bool
)

func init() {
	rootCmd.AddCommand(flowedCmd)
	flowedCmd.Flags().IntVar(&flowedWidth, "width", 0, "wrap width, the configured width when zero")
	flowedCmd.Flags().BoolVar(&flowedDelSp, "delsp", false, "the text was sent with delsp=yes")
	flowedCmd.Flags().BoolVar(&flowedDiff, "diff", false, "show the changes made instead of the result")
	flowedCmd.Flags().BoolVar(&flowedUnstuff, "unstuff", false, "only remove space stuffing, as when storing the text")
	flowedCmd.Flags().BoolVar(&flowedQuote, "quote", false, "quote the text as for a reply")
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func RunFlowed(cmd *cobra.Command, args []string) error {
	in, err := readInput(args[0])
	if err != nil {
		return err
	}

	text := strings.ReplaceAll(string(in), "\r\n", "\n")

	var out string
	if flowedUnstuff {
		lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		out = strings.Join(flowed.UnstuffForStorage(lines), "\n") + "\n"
	} else {
		width := flowedWidth
		if width == 0 {
			width = conf.WrapWidth
		}

		var opts []flowed.Option
		if conf.ReflowSpaceQuotes {
			opts = append(opts, flowed.WithSpaceQuotes())
		}
		if flowedQuote {
			opts = append(opts, flowed.WithReplyQuoting())
		}
		out = flowed.ReflowText(text, width, flowedDelSp, opts...)
	}

	w := cmd.OutOrStdout()
	if !flowedDiff {
		_, err = io.WriteString(w, out)
		return err
	}

	_, err = io.WriteString(w, LineDiff(text, out))
	return err
}

// LineDiff shows the lines removed from a with "-" and the lines added in b
// with "+".
func LineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	sb := &strings.Builder{}
	for _, d := range diffs {
		mark := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			mark = "-"
		case diffmatchpatch.DiffInsert:
			mark = "+"
		}
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			if !strings.HasSuffix(l, "\n") {
				l += "\n"
			}
			_, _ = fmt.Fprintf(sb, "%s%s", mark, l)
		}
	}
	return sb.String()
}
