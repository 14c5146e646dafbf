package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ggoodman/autofill-go/autofill"
	"github.com/ggoodman/autofill-go/document"
)

func newEncodeCmd(a *app) *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "encode <document>",
		Short: "Encode a YAML/JSON document into the binary form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := fileCtx(cmd.Context(), args[0])
			resp, err := loadDocument(cmd, args[0], format)
			if err != nil {
				a.log.ErrorContext(ctx, "fillresp.encode.fail", slog.String("err", err.Error()))
				return err
			}
			data, err := autofill.Marshal(resp)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
			} else {
				err = os.WriteFile(out, data, 0o644)
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.log.InfoContext(ctx, "fillresp.encode.ok", slog.Any("response", resp), slog.Int("bytes", len(data)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&format, "format", "", "document format (yaml or json); inferred from the extension by default")
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode <binary>",
		Short: "Decode the binary form into a YAML/JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := fileCtx(cmd.Context(), args[0])
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			resp, err := autofill.Unmarshal(data)
			if err != nil {
				a.log.ErrorContext(ctx, "fillresp.decode.fail", slog.String("err", err.Error()))
				return fmt.Errorf("%s: %w", args[0], err)
			}
			a.log.DebugContext(ctx, "fillresp.decode.ok", slog.Any("response", resp))
			return document.Encode(cmd.OutOrStdout(), document.FromFillResponse(resp), f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml or json)")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the document form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := document.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
