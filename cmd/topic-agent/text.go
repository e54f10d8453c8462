package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/textract"
)

var textCmd = &cobra.Command{
	Use:   "text <file>",
	Short: "Print the normalized text extracted from one article",
	Long: `Run text extraction alone, without calling the model or touching either
store. Useful to check what the model will be shown for a PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	textCmd.Flags().String("pdftotext", "", "pdftotext binary used when a PDF has no usable text layer")
	textCmd.Flags().Bool("prefer-poppler", false, "try pdftotext before the embedded PDF reader")
	rootCmd.AddCommand(textCmd)
}

// TextResponse is the JSON shape of the text command.
type TextResponse struct {
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Pages      int      `json:"pages"`
	Chars      int      `json:"chars"`
	DurationMS int64    `json:"duration_ms"`
	Warnings   []string `json:"warnings,omitempty"`
	Text       string   `json:"text"`
}

func runText(cmd *cobra.Command, args []string) error {
	ctx, cancel := common.WithTimeout(cmd.Context(), cfg.Pipeline.DocumentTimeout)
	defer cancel()

	tx := textract.NewExtractor(textract.Config{
		Pdftotext:      cfg.Text.Pdftotext,
		PreferExternal: cfg.Text.PreferExternal,
		MaxPages:       cfg.Text.MaxPages,
		MinChars:       cfg.Text.MinChars,
	}, logger)
	res, err := tx.Extract(ctx, args[0])
	if err != nil {
		return err
	}

	if humanOutput {
		outputHuman(os.Stdout, "%s\n", res.Text)
		return nil
	}
	return outputJSON(os.Stdout, TextResponse{
		Path:       args[0],
		Method:     res.Method,
		Pages:      res.Pages,
		Chars:      len([]rune(res.Text)),
		DurationMS: res.Duration.Round(time.Millisecond).Milliseconds(),
		Warnings:   res.Warnings,
		Text:       res.Text,
	})
}
