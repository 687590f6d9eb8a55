package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/screenshot"
)

type recordWriter interface {
	Put(ctx context.Context, rec screenshot.Record) error
}

type seedRecord struct {
	URL        string `json:"url"`
	Screenshot string `json:"screenshot"`
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Load submissions into the configured local record store",
		Long: `Reads a JSON array of {"url": ..., "screenshot": ...} objects and inserts
them into the sqlite or postgres mirror. Airtable is read-only here.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			writer, ok := appInstance.Store().(recordWriter)
			if !ok {
				return fmt.Errorf("configured record store does not accept writes")
			}

			records, err := readSeedFile(args[0])
			if err != nil {
				return err
			}
			for i, rec := range records {
				if err := writer.Put(cmd.Context(), screenshot.Record{URL: rec.URL, ScreenshotURL: rec.Screenshot}); err != nil {
					return fmt.Errorf("seed record %d: %w", i, err)
				}
			}
			appInstance.Logger().Info("seeded submissions", zap.Int("count", len(records)), zap.String("file", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d submissions\n", len(records))
			return nil
		},
	}
}

func readSeedFile(path string) ([]seedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var records []seedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return records, nil
}
