package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mua/internal/mlog"
	"github.com/zostay/go-mua/message"
	"github.com/zostay/go-mua/message/transfer"
	"github.com/zostay/go-mua/message/walker"
)

var (
	treeCmd = &cobra.Command{
		Use:   "tree <file>",
		Short: "Show the body structure of a message",
		Args:  cobra.ExactArgs(1),
		RunE:  RunTree,
	}

	treeMbox   bool
	treeDigest bool
	treeIMAP   bool
)

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVar(&treeMbox, "mbox", false, "the file is an mbox holding many messages")
	treeCmd.Flags().BoolVar(&treeDigest, "digest", false, "parse the message as a digest entry")
	treeCmd.Flags().BoolVar(&treeIMAP, "imap", false, "print the IMAP BODYSTRUCTURE as JSON")
}

func RunTree(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	out := cmd.OutOrStdout()
	digest := treeDigest || conf.Digest

	if !treeMbox {
		src, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		return showTree(out, src, digest)
	}

	r := mbox.NewReader(f)
	for n := 1; ; n++ {
		mr, err := r.NextMessage()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("reading message %d: %w", n, err)
		}

		src, err := io.ReadAll(mr)
		if err != nil {
			return fmt.Errorf("reading message %d: %w", n, err)
		}

		_, _ = fmt.Fprintf(out, "message %d\n", n)
		if err := showTree(transfer.NewPrefixWriter(out, "  "), src, digest); err != nil {
			mlog.New("mimetree", logger).Warnx("skipping unreadable message", err,
				slog.Int("message", n))
		}
	}
}

func showTree(w io.Writer, src []byte, digest bool) error {
	root, err := message.Parse(src, digest, conf.ParseOptions(logger)...)
	if err != nil {
		return err
	}

	if treeIMAP {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(message.BodyStructure(src, root))
	}

	_, _ = fmt.Fprintf(w, "line break: %s\n", root.Header.Break().Name())
	return WriteTree(w, root)
}

// WriteTree writes one line per part of the tree below root.
func WriteTree(w io.Writer, root *message.Part) error {
	return walker.Paths(func(path string, depth int, p *message.Part) error {
		if path == "" {
			path = "."
		}

		desc := []string{
			strings.Repeat("  ", depth) + path,
			p.MediaType(),
		}
		if p.IsText() {
			desc = append(desc, p.Charset())
		}
		desc = append(desc, p.Encoding.String(), fmt.Sprintf("%d bytes", p.Length))
		if p.Disposition != message.Inline {
			desc = append(desc, p.Disposition.String())
		}
		if p.Filename != "" {
			desc = append(desc, fmt.Sprintf("%q", p.Filename))
		}
		if p.Envelope != nil && p.Envelope.Subject != "" {
			desc = append(desc, fmt.Sprintf("subject %q", p.Envelope.Subject))
		}
		if p.Degraded {
			desc = append(desc, "(degraded)")
		}

		_, err := fmt.Fprintln(w, strings.Join(desc, " "))
		return err
	}).Walk(root)
}
