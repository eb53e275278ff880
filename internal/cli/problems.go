package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"daily-challenge-service/internal/challenge"
	"daily-challenge-service/internal/domain"
)

// NewProblemsCmd prints a day's problems together with their exact answers.
func NewProblemsCmd() *cobra.Command {
	var (
		date     string
		rawType  string
		timezone string
	)
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "Print the problems and answers of a challenge day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				loc, err := challenge.LoadZone(timezone)
				if err != nil {
					return err
				}
				date = challenge.Today(nowFunc(), loc)
			}
			t := domain.ParseChallengeType(rawType)
			problems, err := challenge.Generate(date, t)
			if err != nil {
				return err
			}
			return printProblems(cmd, date, t, problems)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "challenge date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&rawType, "type", string(domain.Division), "challenge type")
	cmd.Flags().StringVar(&timezone, "timezone", challenge.DefaultResetZone, "reset time zone used for today")
	return cmd
}

func printProblems(cmd *cobra.Command, date string, t domain.ChallengeType, problems []domain.Problem) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", date, t)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tEXPRESSION\tANSWER")
	for _, p := range problems {
		fmt.Fprintf(tw, "%d\t%s\t%g\n", p.Index, p.Expression, p.ExactAnswer)
	}
	return tw.Flush()
}
