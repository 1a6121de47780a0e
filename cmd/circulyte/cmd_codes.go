package main

import (
	"fmt"
	"os"
	"path/filepath"

	"circulyte-backend/internal/codegen"

	"github.com/spf13/cobra"
)

var (
	codeType     string
	codeQuantity int
	codeOutDir   string
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Tracking code tools",
}

var codesGenerateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Generate tracking codes into an xlsx file",
	Example: `  circulyte codes generate --type BOX --quantity 5000 --out ./exports`,
	RunE:    runCodesGenerate,
}

func init() {
	codesGenerateCmd.Flags().StringVarP(&codeType, "type", "t", "", "Code type: BOX, FIBER or PACK")
	codesGenerateCmd.Flags().IntVarP(&codeQuantity, "quantity", "n", 0, "Number of codes (1 to 1,000,000)")
	codesGenerateCmd.Flags().StringVarP(&codeOutDir, "out", "o", ".", "Output directory")
	_ = codesGenerateCmd.MarkFlagRequired("type")
	_ = codesGenerateCmd.MarkFlagRequired("quantity")

	codesCmd.AddCommand(codesGenerateCmd)
}

func runCodesGenerate(cmd *cobra.Command, args []string) error {
	t, err := codegen.ParseType(codeType)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	g := codegen.NewGenerator(cfg.Location())
	data, name, err := g.Export(t, codeQuantity, func(done, total int) {
		fmt.Fprintf(out, "generated %d/%d\n", done, total)
	})
	if err != nil {
		return fmt.Errorf("failed to generate codes: %w", err)
	}

	path, err := writeAtomic(codeOutDir, name, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d %s codes: %s\n", codeQuantity, t, path)
	return nil
}

// writeAtomic writes data to a temporary file in dir and renames it into
// place, so no partial workbook is ever visible under name.
func writeAtomic(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".codes-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}

	final := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("move workbook into place: %w", err)
	}
	return final, nil
}
