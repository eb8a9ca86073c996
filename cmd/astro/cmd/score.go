package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/astrocore/internal/domain/compat"
)

type scoreOptions struct {
	scores       string
	a            string
	b            string
	relationship string
	partial      bool
}

type scoreOutput struct {
	Score     int              `json:"score"`
	Breakdown compat.Breakdown `json:"breakdown"`
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	o := &scoreOptions{}
	c := &cobra.Command{
		Use:   "score",
		Short: "Score compatibility from category score sets",
		Long: `Score compatibility from JSON score sets mapping category to score.

Give either one combined set with --scores, or one set per person with --a
and --b (their shared categories are averaged). "-" reads a set from stdin.

Examples:
  astro score --scores combined.json --relationship consistent
  astro score --a alice.json --b bob.json --relationship toxic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rel, err := compat.ParseRelationshipType(o.relationship)
			if err != nil {
				return err
			}
			if o.partial {
				root.cfg.AllowPartialScores = true
			}
			svc, err := root.newService(cmd.Context(), "", "")
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()

			var b compat.Breakdown
			switch {
			case o.scores != "" && (o.a != "" || o.b != ""):
				return fmt.Errorf("give either --scores or --a and --b")
			case o.scores != "":
				set, err := readScoreSet(in, o.scores)
				if err != nil {
					return err
				}
				b, err = svc.Score(cmd.Context(), set, rel)
				if err != nil {
					return err
				}
			case o.a != "" && o.b != "":
				a, err := readScoreSet(in, o.a)
				if err != nil {
					return err
				}
				bs, err := readScoreSet(in, o.b)
				if err != nil {
					return err
				}
				b, err = svc.ScorePair(cmd.Context(), a, bs, rel)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("--scores or both --a and --b are required")
			}
			return printJSON(cmd.OutOrStdout(), scoreOutput{Score: b.Overall, Breakdown: b})
		},
	}

	f := c.Flags()
	f.StringVar(&o.scores, "scores", "", "combined score set JSON file")
	f.StringVar(&o.a, "a", "", "first person's score set JSON file")
	f.StringVar(&o.b, "b", "", "second person's score set JSON file")
	f.StringVar(&o.relationship, "relationship", "", "consistent, complicated or toxic")
	f.BoolVar(&o.partial, "partial", false, "allow sets that omit categories")
	_ = c.MarkFlagRequired("relationship")
	return c
}

func readScoreSet(stdin io.Reader, path string) (compat.ScoreSet, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var set compat.ScoreSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("score set %s: %w", path, err)
	}
	return set, nil
}
