package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"daily-challenge-service/internal/config"
	"daily-challenge-service/internal/domain"
)

// NewResetCmd deletes a day's submissions so users can play it again.
func NewResetCmd(configPath *string) *cobra.Command {
	var (
		date    string
		rawType string
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all submissions of a challenge day (optionally one type)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			setupLogging(cfg)
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured; nothing persistent to reset")
			}
			var t *domain.ChallengeType
			if rawType != "" {
				if !domain.Known(rawType) {
					return fmt.Errorf("unknown challenge type %q", rawType)
				}
				parsed := domain.ParseChallengeType(rawType)
				t = &parsed
			}

			deps, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer deps.Close()
			if date == "" {
				date = deps.service.Today()
			}

			deleted, err := deps.service.ResetDay(cmd.Context(), date, t)
			if err != nil {
				return err
			}
			slog.Info("daily challenge reset", slog.String("date", date), slog.String("type", rawType), slog.Int64("deleted", deleted))
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d submissions\n", deleted)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "challenge date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&rawType, "type", "", "challenge type: division, equation or multiplication (default all)")
	return cmd
}
