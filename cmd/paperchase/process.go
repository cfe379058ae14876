package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sprintpoint/paperchase/internal/common"
	"github.com/sprintpoint/paperchase/internal/engine"
	"github.com/sprintpoint/paperchase/internal/extract"
	"github.com/sprintpoint/paperchase/internal/ledger"
	"github.com/sprintpoint/paperchase/internal/llm"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <input_folder>",
		Short: "Classify, rename, and reconcile the PDFs in a folder",
		Long: `Classify every PDF in a folder, rename and file each one by document
type, and optionally reconcile expenses and invoices against an Excel
ledger, marking matched rows as uploaded.

Examples:
  paperchase process ~/Documents/inbox
  paperchase process ~/Documents/inbox --excel ~/Documents/expenses.xlsx
  paperchase process ~/Documents/inbox --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().String("excel", "", "Excel ledger to match documents against and mark as uploaded")
	cmd.Flags().Bool("dry-run", false, "Preview renames and matches without touching disk or ledger")

	_ = viper.BindPFlag("process.excel", cmd.Flags().Lookup("excel"))
	_ = viper.BindPFlag("process.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	folder := args[0]
	excelPath := viper.GetString("process.excel")
	dryRun := viper.GetBool("process.dry_run")

	info, err := os.Stat(folder)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("folder does not exist: %s", folder), err)
	}
	if !info.IsDir() {
		return common.NewUserError(fmt.Sprintf("path is not a directory: %s", folder), nil)
	}

	classifier, err := createClassifier()
	if err != nil {
		return err
	}

	var book *ledger.Ledger
	if excelPath != "" {
		book, err = ledger.Load(excelPath)
		if err != nil {
			return err
		}
	}

	var bar *progressbar.ProgressBar
	eng := engine.New(engine.Config{
		Extractor:       extract.NewPDFExtractor(),
		Classifier:      classifier,
		Ledger:          book,
		ExcludePatterns: viper.GetStringSlice("ledger.exclude_patterns"),
		DryRun:          dryRun,
		Progress: func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "classifying")
			}
			_ = bar.Set(done)
		},
	})

	summary, err := eng.Run(ctx, folder)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Print(summary.Render())

	// Per-document failures are already in the summary; the run itself
	// completed.
	return nil
}

func createClassifier() (llm.Client, error) {
	provider := viper.GetString("classifier.provider")

	apiKey := viper.GetString("classifier.api_key")
	if apiKey == "" {
		switch provider {
		case "openai":
			apiKey = os.Getenv("OPENAI_API_KEY")
		default:
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if apiKey == "" {
		return nil, common.NewUserError(
			fmt.Sprintf("no API key configured for provider %q (set classifier.api_key or the provider's environment variable)", provider),
			common.ErrMissingConfig)
	}

	return llm.NewClient(llm.Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       viper.GetString("classifier.model"),
		Temperature: viper.GetFloat64("classifier.temperature"),
		MaxTokens:   viper.GetInt("classifier.max_tokens"),
		CacheTTL:    viper.GetDuration("classifier.cache_ttl"),
	})
}
