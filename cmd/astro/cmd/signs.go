package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/astrocore/internal/domain/model"
)

type signsOptions struct {
	date        string
	clock       string
	timeUnknown bool
	lat         float64
	lon         float64
	zone        string
	offset      float64
	houses      string
	policy      string
}

func newSignsCommand(root *rootOptions) *cobra.Command {
	o := &signsOptions{}
	c := &cobra.Command{
		Use:   "signs",
		Short: "Resolve the sun, moon and rising signs for a birth",
		Long: `Resolve the sun, moon and rising signs for one birth event.

The birth time is local to --tz. When --tz is missing or not in the tz
database, --offset is used as a fixed UTC offset in hours.

Examples:
  astro signs --date 2000-01-01 --time 12:00 --lat 51.4769 --lon 0 --tz Europe/London
  astro signs --date 1985-03-02 --time-unknown --lat -33.87 --lon 151.21 --tz Australia/Sydney
  astro signs --date 1970-07-20 --time 03:15 --lat 64.15 --lon -21.94 --offset 0 --houses whole_sign`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := o.birth(cmd)
			if err != nil {
				return err
			}
			svc, err := root.newService(cmd.Context(), o.houses, o.policy)
			if err != nil {
				return err
			}
			triad, err := svc.ResolveSigns(cmd.Context(), b)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), triad)
		},
	}

	f := c.Flags()
	f.StringVar(&o.date, "date", "", "local birth date, YYYY-MM-DD")
	f.StringVar(&o.clock, "time", "", "local birth time, HH:MM (24h)")
	f.BoolVar(&o.timeUnknown, "time-unknown", false, "birth time is not known")
	f.Float64Var(&o.lat, "lat", 0, "latitude in degrees, north positive")
	f.Float64Var(&o.lon, "lon", 0, "longitude in degrees, east positive")
	f.StringVar(&o.zone, "tz", "", "IANA timezone, e.g. Europe/London")
	f.Float64Var(&o.offset, "offset", 0, "fixed UTC offset in hours")
	f.StringVar(&o.houses, "houses", "", "house system: placidus, koch, porphyry, equal, whole_sign")
	f.StringVar(&o.policy, "unknown-time", "", "rising sign policy for unknown times: omit or noon")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("lat")
	_ = c.MarkFlagRequired("lon")
	c.MarkFlagsMutuallyExclusive("time", "time-unknown")
	return c
}

func (o *signsOptions) birth(cmd *cobra.Command) (model.BirthEvent, error) {
	d, err := time.Parse(time.DateOnly, o.date)
	if err != nil {
		return model.BirthEvent{}, fmt.Errorf("--date: %w", err)
	}
	b := model.BirthEvent{
		Year: d.Year(), Month: int(d.Month()), Day: d.Day(),
		TimeUnknown: o.timeUnknown,
		Latitude:    o.lat,
		Longitude:   o.lon,
		Timezone:    o.zone,
	}
	if !o.timeUnknown {
		if o.clock == "" {
			return model.BirthEvent{}, fmt.Errorf("--time or --time-unknown is required")
		}
		t, err := time.Parse("15:04", o.clock)
		if err != nil {
			return model.BirthEvent{}, fmt.Errorf("--time: %w", err)
		}
		b.Hour, b.Minute = t.Hour(), t.Minute()
	}
	if cmd.Flags().Changed("offset") {
		off := o.offset
		b.OffsetHours = &off
	}
	return b, nil
}
