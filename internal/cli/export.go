package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/citetrace/internal/report"
)

var (
	exportJSONPath string
	exportMDPath   string
	exportCSVPath  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <run_id>",
	Short: "Export a completed run as JSON, Markdown or CSV",
	Long: `Export writes a stored run in the requested formats: the full
bundle as JSON, a readable Markdown report, or a per-source CSV.

Example:
  citetrace export run_4f9c... --json bundle.json
  citetrace export run_4f9c... --md report.md --csv sources.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportJSONPath, "json", "", "output JSON bundle path")
	exportCmd.Flags().StringVar(&exportMDPath, "md", "", "output Markdown report path")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "output per-source CSV path")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportJSONPath == "" && exportMDPath == "" && exportCSVPath == "" {
		return fmt.Errorf("nothing to export: pass --json, --md or --csv")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := openReadOnly(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	bundle, err := rt.lookupBundle(args[0])
	if err != nil {
		return err
	}

	renderer := report.NewRenderer(cfg.Output.IncludeFooter)
	if exportJSONPath != "" {
		if err := renderer.RenderJSON(bundle, exportJSONPath); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote JSON: %s\n", exportJSONPath)
	}
	if exportMDPath != "" {
		if err := renderer.RenderMarkdown(bundle, exportMDPath); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote Markdown: %s\n", exportMDPath)
	}
	if exportCSVPath != "" {
		if err := report.ExportSourcesCSV(bundle, exportCSVPath); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote CSV: %s\n", exportCSVPath)
	}
	return nil
}
