package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/astrocore/internal/adapters/cache"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/zodiac"
	. "github.com/smartystreets/goconvey/convey"
)

func triad(sun zodiac.Sign) *model.SignTriad {
	rising := zodiac.Libra
	asc := 190.5
	return &model.SignTriad{
		Sun:         sun,
		Moon:        zodiac.Pisces,
		Rising:      &rising,
		HouseSystem: "placidus",
		Timezone:    "UTC",
		UTC:         time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		Longitudes:  model.Longitudes{Sun: 280.4, Moon: 341.2, Ascendant: &asc},
	}
}

func TestMemoryCache(t *testing.T) {
	Convey("Given a memory cache holding two entries", t, func() {
		ctx := context.Background()
		c := cache.NewMemory(cache.WithMaxEntries(2))

		Convey("When reading a missing key", func() {
			got, ok, err := c.Get(ctx, "nope")

			Convey("Then it should miss without error", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				So(got, ShouldBeNil)
			})
		})

		Convey("When storing and reading a triad", func() {
			So(c.Set(ctx, "a", triad(zodiac.Leo)), ShouldBeNil)
			got, ok, err := c.Get(ctx, "a")

			Convey("Then the same triad should come back", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, triad(zodiac.Leo))
			})
		})

		Convey("When a third key is stored", func() {
			So(c.Set(ctx, "a", triad(zodiac.Aries)), ShouldBeNil)
			So(c.Set(ctx, "b", triad(zodiac.Taurus)), ShouldBeNil)
			_, _, _ = c.Get(ctx, "a")
			So(c.Set(ctx, "c", triad(zodiac.Gemini)), ShouldBeNil)

			Convey("Then the least recently used key should be evicted", func() {
				_, okA, _ := c.Get(ctx, "a")
				_, okB, _ := c.Get(ctx, "b")
				_, okC, _ := c.Get(ctx, "c")
				So(okA, ShouldBeTrue)
				So(okB, ShouldBeFalse)
				So(okC, ShouldBeTrue)
			})
		})

		Convey("When the caller mutates a returned triad", func() {
			So(c.Set(ctx, "a", triad(zodiac.Leo)), ShouldBeNil)
			got, _, _ := c.Get(ctx, "a")
			got.Sun = zodiac.Virgo

			Convey("Then the cached value should be unaffected", func() {
				again, _, _ := c.Get(ctx, "a")
				So(again.Sun, ShouldEqual, zodiac.Leo)
			})
		})

		Convey("When closed", func() {
			So(c.Set(ctx, "a", triad(zodiac.Leo)), ShouldBeNil)
			So(c.Close(), ShouldBeNil)
			_, ok, _ := c.Get(ctx, "a")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a memory cache with a TTL", t, func() {
		ctx := context.Background()
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := cache.NewMemory(cache.WithTTL(time.Minute), cache.WithClock(func() time.Time { return now }))
		So(c.Set(ctx, "a", triad(zodiac.Leo)), ShouldBeNil)

		Convey("When the TTL has not passed", func() {
			now = now.Add(59 * time.Second)
			_, ok, _ := c.Get(ctx, "a")
			So(ok, ShouldBeTrue)
		})

		Convey("When the TTL has passed", func() {
			now = now.Add(time.Minute)
			_, ok, _ := c.Get(ctx, "a")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestNopCache(t *testing.T) {
	Convey("Given a nop cache", t, func() {
		ctx := context.Background()
		c := cache.NewNop()
		So(c.Set(ctx, "a", triad(zodiac.Leo)), ShouldBeNil)
		_, ok, err := c.Get(ctx, "a")
		So(err, ShouldBeNil)
		So(ok, ShouldBeFalse)
		So(c.Close(), ShouldBeNil)
	})
}

func TestDialRedis(t *testing.T) {
	Convey("Given no redis server listening", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		Convey("When dialing", func() {
			_, err := cache.DialRedis(ctx, "127.0.0.1:1", 0)

			Convey("Then it should report the cache as unavailable", func() {
				So(errors.Is(err, cache.ErrCacheUnavailable), ShouldBeTrue)
			})
		})
	})
}
