package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mua/message"
	"github.com/zostay/go-mua/message/walker"
)

var (
	partCmd = &cobra.Command{
		Use:   "part <file> <path>",
		Short: "Write the decoded body of one part",
		Long: `Write the decoded body of one part. The path is the dotted part number
shown by tree, "." for the message itself.`,
		Args: cobra.ExactArgs(2),
		RunE: RunPart,
	}

	partRaw    bool
	partReply  bool
	partText   bool
	partPrefix string
)

func init() {
	rootCmd.AddCommand(partCmd)
	partCmd.Flags().BoolVar(&partRaw, "raw", false, "only remove the transfer encoding, as for signature checks")
	partCmd.Flags().BoolVar(&partReply, "reply", false, "quote the text as for a reply")
	partCmd.Flags().BoolVar(&partText, "text", false, "treat the part as text whatever its type")
	partCmd.Flags().StringVar(&partPrefix, "prefix", "", "prefix for every line of text")
}

func RunPart(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	root, err := message.Parse(src, conf.Digest, conf.ParseOptions(logger)...)
	if err != nil {
		return err
	}

	path := args[1]
	if path == "." {
		path = ""
	}
	p, err := walker.Find(root, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	dc := conf.DecodeContext(out, logger)
	switch {
	case partRaw:
		dc.Flags = message.Verify
	case partReply:
		dc = conf.ReplyContext(out, logger)
	}
	if partPrefix != "" {
		dc.Prefix = partPrefix
	}

	as := message.AsDeclared
	if partText {
		as = message.AsText
	}

	return message.DecodePartAs(src, p, as, dc)
}
