package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mua/message/header/field"
)

var (
	headerCmd = &cobra.Command{
		Use:   "header",
		Short: "Encode and decode RFC 2047 header text",
	}

	headerEncodeCmd = &cobra.Command{
		Use:   "encode <text>",
		Short: "Encode text for use in a header field",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunHeaderEncode,
	}

	headerDecodeCmd = &cobra.Command{
		Use:   "decode <text>",
		Short: "Decode the encoded words of a header field body",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunHeaderDecode,
	}

	headerName   string
	headerPhrase bool
)

func init() {
	rootCmd.AddCommand(headerCmd)
	headerCmd.AddCommand(headerEncodeCmd)
	headerCmd.AddCommand(headerDecodeCmd)

	headerEncodeCmd.Flags().StringVar(&headerName, "field", "Subject", "name of the field the text is for")
	headerEncodeCmd.Flags().BoolVar(&headerPhrase, "phrase", false, "encode as the display name of an address")
}

func RunHeaderEncode(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	col := len(headerName) + 2

	var enc string
	if headerPhrase {
		enc = field.EncodePhrase(text, conf.SendCharsets(), col)
	} else {
		enc = field.Encode(text, conf.SendCharsets(), col)
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", headerName, enc)
	return err
}

func RunHeaderDecode(cmd *cobra.Command, args []string) error {
	text := field.DecodeHeaderValue(strings.Join(args, " "),
		field.WithAssumedCharset(conf.AssumedCharset),
		field.WithTargetCharset(conf.Charset),
		field.WithDecodeLogger(logger))

	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
