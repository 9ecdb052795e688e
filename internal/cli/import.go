package cli

import (
	"context"
	"fmt"

	"banisa-service/internal/config"
	"banisa-service/internal/infra/file"
	pgstore "banisa-service/internal/infra/postgres"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewImportCmd loads a YAML/JSON corpus file into Postgres under a corpus id.
func NewImportCmd(configPath *string) *cobra.Command {
	var corpusID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a clue corpus file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, corpusID, args[0])
		},
	}
	cmd.Flags().StringVar(&corpusID, "corpus", "", "corpus id (defaults to corpus.id from config)")
	return cmd
}

func runImport(ctx context.Context, configPath, corpusID, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if corpusID == "" {
		corpusID = cfg.Corpus.ID
	}
	if corpusID == "" {
		return fmt.Errorf("corpus id not set: pass --corpus or configure corpus.id")
	}

	records, err := file.ReadCorpusFile(path)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}
	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := pgstore.NewCorpusImporter(db).Import(ctx, corpusID, records)
	if err != nil {
		return err
	}
	log.Info().Str("corpus", corpusID).Int("records", n).Str("file", path).Msg("corpus imported")
	return nil
}
