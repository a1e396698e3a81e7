package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fpang/portrait-retouch/internal/chat"
	"github.com/fpang/portrait-retouch/internal/cli"
)

var analyzeImageFlag string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a portrait and print the detected issues as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := analyzeImageFlag
		if path == "" {
			path = cli.PromptForImage()
		}
		_, image, mime, err := cli.ReadImage(path)
		if err != nil {
			return err
		}

		ctx, client := cli.InitGeminiClient(cfg.AnalysisModel)
		analyzer := chat.NewImageAnalyzer(chat.NewGeminiImageClient(client), cfg.AnalysisModel, cfg.AnalysisTimeout.Duration)
		analysis := analyzer.Analyze(ctx, image, mime)

		out, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeImageFlag, "image", "i", "", "Portrait image (JPEG, PNG or WebP)")
}
