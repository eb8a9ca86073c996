package signs_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/internal/domain/tz"
	"github.com/okian/astrocore/internal/domain/zodiac"
	. "github.com/smartystreets/goconvey/convey"
)

func offset(f float64) *float64 { return &f }

func londonJ2000() model.BirthEvent {
	return model.BirthEvent{
		Year: 2000, Month: 1, Day: 1, Hour: 12, Minute: 0,
		Latitude: 51.4769, Longitude: 0,
		Timezone: "Europe/London",
	}
}

func TestResolveSigns(t *testing.T) {
	Convey("Given a sign resolution service", t, func() {
		ctx := context.Background()
		svc := signs.NewService()

		Convey("When resolving a known birth event", func() {
			triad, err := svc.ResolveSigns(ctx, londonJ2000())

			Convey("Then it should return all three signs", func() {
				So(err, ShouldBeNil)
				So(triad.Sun, ShouldEqual, zodiac.Capricorn)
				So(triad.Moon, ShouldEqual, zodiac.Scorpio)
				So(triad.Rising, ShouldNotBeNil)
				So(*triad.Rising, ShouldEqual, zodiac.Aries)
				So(triad.TimeUnknown, ShouldBeFalse)
				So(triad.RisingApproximate, ShouldBeFalse)
				So(triad.HouseSystem, ShouldEqual, "placidus")
				So(triad.Timezone, ShouldEqual, "Europe/London")
				So(triad.Longitudes.Ascendant, ShouldNotBeNil)
			})

			Convey("Then resolving it again should be bit-identical", func() {
				again, err := svc.ResolveSigns(ctx, londonJ2000())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, triad)
			})
		})

		Convey("When the zone and an equivalent offset describe the same instant", func() {
			byZone, err := svc.ResolveSigns(ctx, londonJ2000())
			So(err, ShouldBeNil)
			b := londonJ2000()
			b.Timezone = ""
			b.OffsetHours = offset(0)
			byOffset, err := svc.ResolveSigns(ctx, b)
			So(err, ShouldBeNil)

			Convey("Then the signs and longitudes should match", func() {
				So(byOffset.UTC, ShouldEqual, byZone.UTC)
				So(byOffset.Sun, ShouldEqual, byZone.Sun)
				So(byOffset.Moon, ShouldEqual, byZone.Moon)
				So(*byOffset.Rising, ShouldEqual, *byZone.Rising)
				So(byOffset.Longitudes.Sun, ShouldEqual, byZone.Longitudes.Sun)
			})
		})

		Convey("When the birth time is unknown", func() {
			b := londonJ2000()
			b.TimeUnknown = true
			b.Hour, b.Minute = 3, 17

			Convey("And the policy omits the rising sign", func() {
				triad, err := svc.ResolveSigns(ctx, b)

				Convey("Then noon should be used and rising left empty", func() {
					So(err, ShouldBeNil)
					So(triad.TimeUnknown, ShouldBeTrue)
					So(triad.Rising, ShouldBeNil)
					So(triad.Longitudes.Ascendant, ShouldBeNil)
					So(triad.UTC.Hour(), ShouldEqual, 12)
					So(triad.Sun, ShouldEqual, zodiac.Capricorn)
				})
			})

			Convey("And the policy substitutes noon for the rising sign", func() {
				noon := signs.NewService(signs.WithUnknownTimePolicy(signs.NoonRising))
				triad, err := noon.ResolveSigns(ctx, b)

				Convey("Then rising should be present but flagged approximate", func() {
					So(err, ShouldBeNil)
					So(triad.Rising, ShouldNotBeNil)
					So(triad.RisingApproximate, ShouldBeTrue)
					So(triad.TimeUnknown, ShouldBeTrue)
				})
			})

			Convey("And the place is inside the polar circle", func() {
				b.Latitude = 78.22
				b.Longitude = 15.65
				b.Timezone = "Arctic/Longyearbyen"
				triad, err := svc.ResolveSigns(ctx, b)

				Convey("Then the luminaries should still resolve", func() {
					So(err, ShouldBeNil)
					So(triad.Rising, ShouldBeNil)
				})
			})
		})

		Convey("When the place is inside the polar circle with a known time", func() {
			b := londonJ2000()
			b.Latitude = 78.22
			b.Longitude = 15.65
			b.Timezone = "Arctic/Longyearbyen"
			_, err := svc.ResolveSigns(ctx, b)

			Convey("Then the degenerate house system should be surfaced", func() {
				So(errors.Is(err, ephemeris.ErrEphemerisComputation), ShouldBeTrue)
			})

			Convey("And whole sign houses should resolve it", func() {
				ws := signs.NewService(signs.WithCalculator(ephemeris.NewCalculator(ephemeris.WithHouseSystem(ephemeris.WholeSign))))
				triad, err := ws.ResolveSigns(ctx, b)
				So(err, ShouldBeNil)
				So(triad.HouseSystem, ShouldEqual, "whole_sign")
				So(triad.Rising, ShouldNotBeNil)
			})
		})

		Convey("When the zone is unknown but an offset is given", func() {
			b := londonJ2000()
			b.Timezone = "Nowhere/Special"
			b.OffsetHours = offset(0)
			triad, err := svc.ResolveSigns(ctx, b)

			Convey("Then the offset should be used", func() {
				So(err, ShouldBeNil)
				So(triad.Timezone, ShouldEqual, "UTC")
			})
		})

		Convey("When the zone is unknown and no offset is given", func() {
			b := londonJ2000()
			b.Timezone = "Nowhere/Special"
			_, err := svc.ResolveSigns(ctx, b)

			Convey("Then it should fail with a timezone resolution error", func() {
				So(errors.Is(err, tz.ErrTimezoneResolution), ShouldBeTrue)
			})
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given invalid birth events", t, func() {
		svc := signs.NewService()
		ctx := context.Background()

		Convey("When several fields are wrong", func() {
			b := model.BirthEvent{
				Year: 1990, Month: 13, Day: 0, Hour: 24, Minute: 60,
				Latitude: 91, Longitude: -181,
			}
			_, err := svc.ResolveSigns(ctx, b)

			Convey("Then every violated field should be reported", func() {
				So(errors.Is(err, signs.ErrValidation), ShouldBeTrue)
				var ve *signs.ValidationError
				So(errors.As(err, &ve), ShouldBeTrue)
				for _, f := range []string{"month", "day", "hour", "minute", "latitude", "longitude", "timezone"} {
					So(ve.Has(f), ShouldBeTrue)
				}
				So(len(ve.Fields), ShouldEqual, 7)
				So(ve.Has("year"), ShouldBeFalse)
			})
		})

		Convey("When the day does not exist in the month", func() {
			err := signs.Validate(model.BirthEvent{Year: 2023, Month: 2, Day: 29, Timezone: "UTC"})
			var ve *signs.ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Has("day"), ShouldBeTrue)
			So(ve.Fields[0].Value, ShouldEqual, 29)
		})

		Convey("When the day exists only in a leap year", func() {
			So(signs.Validate(model.BirthEvent{Year: 2024, Month: 2, Day: 29, Timezone: "UTC"}), ShouldBeNil)
		})

		Convey("When the time is unknown", func() {
			Convey("Then hour and minute should not be validated", func() {
				err := signs.Validate(model.BirthEvent{Year: 2024, Month: 1, Day: 1, Hour: 99, Minute: -1, TimeUnknown: true, Timezone: "UTC"})
				So(err, ShouldBeNil)
			})
		})

		Convey("When the offset is not finite", func() {
			err := signs.Validate(model.BirthEvent{Year: 2024, Month: 1, Day: 1, OffsetHours: offset(math.Inf(-1))})
			var ve *signs.ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Has("offset_hours"), ShouldBeTrue)
			So(ve.Has("timezone"), ShouldBeFalse)
		})

		Convey("When the coordinates are NaN", func() {
			err := signs.Validate(model.BirthEvent{Year: 2024, Month: 1, Day: 1, Latitude: math.NaN(), Longitude: math.NaN(), Timezone: "UTC"})
			var ve *signs.ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Has("latitude"), ShouldBeTrue)
			So(ve.Has("longitude"), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "latitude")
		})
	})
}

func TestResolveBatch(t *testing.T) {
	Convey("Given a batch of birth events", t, func() {
		svc := signs.NewService(signs.WithBatchConcurrency(2))
		ctx := context.Background()
		bad := londonJ2000()
		bad.Month = 0
		births := []model.BirthEvent{londonJ2000(), bad, londonJ2000()}

		Convey("When resolving the batch", func() {
			results, err := svc.ResolveBatch(ctx, births)

			Convey("Then each element should carry its own outcome", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 3)
				So(results[0].Err, ShouldBeNil)
				So(errors.Is(results[1].Err, signs.ErrValidation), ShouldBeTrue)
				So(results[2].Err, ShouldBeNil)
				So(results[2].Triad, ShouldResemble, results[0].Triad)
				So(results[1].Index, ShouldEqual, 1)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.ResolveBatch(cctx, births)

			Convey("Then the batch should be abandoned", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestParseUnknownTimePolicy(t *testing.T) {
	Convey("Given policy names", t, func() {
		p, err := signs.ParseUnknownTimePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, signs.OmitRising)

		p, err = signs.ParseUnknownTimePolicy("NOON")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, signs.NoonRising)

		_, err = signs.ParseUnknownTimePolicy("guess")
		So(errors.Is(err, signs.ErrUnknownTimePolicy), ShouldBeTrue)
	})
}
