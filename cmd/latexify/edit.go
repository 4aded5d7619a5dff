package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/latexify/internal/cli"
)

func newEditCmd(a *app) *cobra.Command {
	var texPath, instructions, output string
	cmd := &cobra.Command{
		Use:   "edit --tex FILE|LATEX --instructions TEXT",
		Short: "Apply instructions to an existing LaTeX document",
		Long: `edit sends a LaTeX document and free-form instructions to the model and
prints the updated document. There is no offline fallback: if the model cannot
be reached the command fails.

--tex takes a file path, - for stdin, or the LaTeX source itself. A value that
is not an existing file is used as the document when it contains a backslash
or a newline.`,
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

			current, err := cli.ReadLatex(texPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			doc, err := buildConverter(cfg, logger).EditDocument(cmd.Context(), current, instructions)
			if err != nil {
				return err
			}
			if output == "" {
				return cli.WriteLatex(cmd.OutOrStdout(), doc.Source)
			}
			return os.WriteFile(output, []byte(doc.Source), 0644)
		},
	}
	cmd.Flags().StringVar(&texPath, "tex", "", "LaTeX file to edit, - for stdin, or inline LaTeX")
	cmd.Flags().StringVar(&instructions, "instructions", "", "what to change")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result here instead of stdout")
	cmd.Flags().Bool("strict", false, "reject model output that is not a well-formed document")
	_ = cmd.MarkFlagRequired("tex")
	_ = cmd.MarkFlagRequired("instructions")
	return cmd
}
