package tz_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/astrocore/internal/domain/tz"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(f float64) *float64 { return &f }

func TestResolve(t *testing.T) {
	Convey("Given a timezone resolver", t, func() {
		ctx := context.Background()
		r := tz.NewResolver()

		Convey("When resolving an IANA zone", func() {
			z, err := r.Resolve(ctx, "Asia/Kolkata", nil)

			Convey("Then it should convert local time using the zone rules", func() {
				So(err, ShouldBeNil)
				So(z.Name(), ShouldEqual, "Asia/Kolkata")
				So(z.Fixed(), ShouldBeFalse)
				utc := z.ToUTC(tz.LocalDateTime{Year: 1990, Month: 6, Day: 15, Hour: 12, Minute: 0})
				So(utc, ShouldEqual, time.Date(1990, 6, 15, 6, 30, 0, 0, time.UTC))
			})
		})

		Convey("When the zone is unknown and an offset is supplied", func() {
			z, err := r.Resolve(ctx, "Mars/Olympus_Mons", ptr(-3))

			Convey("Then it should fall back to the offset", func() {
				So(err, ShouldBeNil)
				So(z.Fixed(), ShouldBeTrue)
				So(z.Name(), ShouldEqual, "UTC-03:00")
			})
		})

		Convey("When the zone is unknown and no offset is supplied", func() {
			_, err := r.Resolve(ctx, "Mars/Olympus_Mons", nil)

			Convey("Then it should fail with a resolution error", func() {
				So(errors.Is(err, tz.ErrTimezoneResolution), ShouldBeTrue)
				So(errors.Is(err, tz.ErrUnknownZone), ShouldBeTrue)
				var re *tz.ResolutionError
				So(errors.As(err, &re), ShouldBeTrue)
				So(re.Zone, ShouldEqual, "Mars/Olympus_Mons")
			})
		})

		Convey("When nothing is supplied", func() {
			_, err := r.Resolve(ctx, "", nil)

			Convey("Then it should fail with a resolution error", func() {
				So(errors.Is(err, tz.ErrTimezoneResolution), ShouldBeTrue)
				So(errors.Is(err, tz.ErrNoZone), ShouldBeTrue)
			})
		})

		Convey("When the host-local zone is requested", func() {
			_, err := r.Resolve(ctx, "Local", nil)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, tz.ErrUnknownZone), ShouldBeTrue)
			})
		})

		Convey("When the offset is not finite", func() {
			_, err := r.Resolve(ctx, "", ptr(math.NaN()))
			_, errInf := r.Resolve(ctx, "", ptr(math.Inf(1)))

			Convey("Then it should fail", func() {
				So(errors.Is(err, tz.ErrTimezoneResolution), ShouldBeTrue)
				So(errors.Is(err, tz.ErrInvalidOffset), ShouldBeTrue)
				So(errors.Is(errInf, tz.ErrInvalidOffset), ShouldBeTrue)
			})
		})

		Convey("When the offset is out of range", func() {
			_, err := r.Resolve(ctx, "", ptr(15))

			Convey("Then it should fail", func() {
				So(errors.Is(err, tz.ErrInvalidOffset), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := r.Resolve(cctx, "Europe/Paris", nil)

			Convey("Then the pending result should be discarded", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestFixedOffset(t *testing.T) {
	Convey("Given fixed offsets", t, func() {
		Convey("When the offset is fractional", func() {
			z, err := tz.FixedOffset(5.75)

			Convey("Then it should keep the minutes", func() {
				So(err, ShouldBeNil)
				So(z.Name(), ShouldEqual, "UTC+05:45")
				utc := z.ToUTC(tz.LocalDateTime{Year: 2000, Month: 1, Day: 1, Hour: 12})
				So(utc, ShouldEqual, time.Date(2000, 1, 1, 6, 15, 0, 0, time.UTC))
				So(z.OffsetHoursAt(utc), ShouldEqual, 5.75)
			})
		})

		Convey("When the offset is negative and fractional", func() {
			z, err := tz.FixedOffset(-9.5)
			So(err, ShouldBeNil)
			So(z.Name(), ShouldEqual, "UTC-09:30")
		})

		Convey("When the offset is zero", func() {
			z, err := tz.FixedOffset(0)
			So(err, ShouldBeNil)
			So(z.Name(), ShouldEqual, "UTC")
		})

		Convey("When local midnight is taken at +14 and -12 on one date", func() {
			east, err := tz.FixedOffset(14)
			So(err, ShouldBeNil)
			west, err := tz.FixedOffset(-12)
			So(err, ShouldBeNil)
			local := tz.LocalDateTime{Year: 2024, Month: 3, Day: 10}

			Convey("Then the UTC instants should be 26 hours apart", func() {
				gap := west.ToUTC(local).Sub(east.ToUTC(local))
				So(gap, ShouldEqual, 26*time.Hour)
			})
		})
	})
}

func TestRoundTrip(t *testing.T) {
	Convey("Given an IANA zone with DST", t, func() {
		z, err := tz.Resolve(context.Background(), "America/New_York", nil)
		So(err, ShouldBeNil)

		Convey("When converting a summer time to UTC and back", func() {
			local := tz.LocalDateTime{Year: 2021, Month: 7, Day: 4, Hour: 18, Minute: 45}
			utc := z.ToUTC(local)

			Convey("Then the wall-clock reading should be preserved", func() {
				So(utc, ShouldEqual, time.Date(2021, 7, 4, 22, 45, 0, 0, time.UTC))
				So(z.FromUTC(utc), ShouldResemble, local)
				So(z.OffsetHoursAt(utc), ShouldEqual, -4.0)
			})
		})

		Convey("When converting a winter time", func() {
			utc := z.ToUTC(tz.LocalDateTime{Year: 2021, Month: 1, Day: 4, Hour: 18, Minute: 45})
			So(z.OffsetHoursAt(utc), ShouldEqual, -5.0)
		})
	})
}

func TestDayAnchors(t *testing.T) {
	Convey("Given a resolved zone", t, func() {
		z, err := tz.Resolve(context.Background(), "Pacific/Auckland", nil)
		So(err, ShouldBeNil)

		Convey("When UTC is still on the previous calendar date", func() {
			// 2024-01-31 20:00 UTC is 2024-02-01 09:00 in Auckland (NZDT, +13).
			now := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
			days := z.DayAnchors(now)

			Convey("Then today should follow the local date", func() {
				So(days.Zone, ShouldEqual, "Pacific/Auckland")
				So(days.Today.Date, ShouldEqual, "2024-02-01")
				So(days.Yesterday.Date, ShouldEqual, "2024-01-31")
				So(days.Tomorrow.Date, ShouldEqual, "2024-02-02")
			})

			Convey("Then each day should be anchored at UTC noon", func() {
				So(days.Today.NoonUTC, ShouldEqual, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
				So(days.Yesterday.NoonUTC, ShouldEqual, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC))
				So(days.Tomorrow.NoonUTC, ShouldEqual, time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC))
			})
		})

		Convey("When the year rolls over", func() {
			fixed, err := tz.FixedOffset(0)
			So(err, ShouldBeNil)
			days := fixed.DayAnchors(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC))
			So(days.Tomorrow.Date, ShouldEqual, "2024-01-01")
			So(days.Tomorrow.Year, ShouldEqual, 2024)
		})
	})
}
