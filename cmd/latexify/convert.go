package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperjump/latexify/internal/cli"
	"github.com/hyperjump/latexify/internal/pipeline"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		input, output, format, title, instructions, outFormat string
	)
	cmd := &cobra.Command{
		Use:   "convert --input FILE [--output FILE]",
		Short: "Convert a document to a .tex file",
		Example: `  latexify convert --input report.docx --output report.tex
  latexify convert --input notes.bin --format txt --title "Lab Notes"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{"llm.strict": "strict"})
			if err != nil {
				return err
			}
			logger, err := a.newQuietLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if output == "" {
				output = cli.DefaultOutputPath(input)
			}
			var opts []pipeline.RequestOption
			if title != "" {
				opts = append(opts, pipeline.WithTitle(title))
			}
			if instructions != "" {
				opts = append(opts, pipeline.WithInstructions(instructions))
			}
			doc, err := buildConverter(cfg, logger).ConvertFile(cmd.Context(), input, output, format, opts...)
			if err != nil {
				return err
			}
			return cli.WriteConversion(cmd.OutOrStdout(), cli.NewConversionSummary(input, output, doc), cli.ParseOutputFormat(outFormat))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .tex file (default: input name with .tex)")
	cmd.Flags().StringVar(&format, "format", "", "input format override (txt, pdf, docx, pptx, xlsx, odp, ods)")
	cmd.Flags().StringVar(&title, "title", "", "document title used by the fallback renderer")
	cmd.Flags().StringVar(&instructions, "instructions", "", "extra instructions for the model")
	cmd.Flags().Bool("strict", false, "reject model output that is not a well-formed document")
	cmd.Flags().StringVar(&outFormat, "output-format", "text", "result format: text or json")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
