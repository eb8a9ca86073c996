package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/internal/domain/zodiac"
	"github.com/smartystreets/goconvey/convey"
)

func TestBirthEventKey(t *testing.T) {
	convey.Convey("Given a BirthEvent", t, func() {
		offset := 5.5
		b := model.BirthEvent{
			Year: 1990, Month: 6, Day: 15, Hour: 7, Minute: 30,
			Latitude: 28.6139, Longitude: 77.209,
			Timezone: "Asia/Kolkata", OffsetHours: &offset,
		}

		convey.Convey("Then the key should encode every input field", func() {
			convey.So(b.Key(), convey.ShouldEqual, "1990-06-15T07:30@28.6139,77.209|Asia/Kolkata|5.5")
		})

		convey.Convey("When the time is unknown", func() {
			u := b
			u.TimeUnknown = true
			u.Hour, u.Minute = 3, 3

			convey.Convey("Then hour and minute should not affect the key", func() {
				other := u
				other.Hour, other.Minute = 22, 59
				convey.So(u.Key(), convey.ShouldEqual, other.Key())
				convey.So(u.Key(), convey.ShouldNotEqual, b.Key())
			})
		})

		convey.Convey("When the coordinates change slightly", func() {
			moved := b
			moved.Latitude = 28.61391

			convey.Convey("Then the key should change", func() {
				convey.So(moved.Key(), convey.ShouldNotEqual, b.Key())
			})
		})
	})
}

func TestSignTriadJSON(t *testing.T) {
	convey.Convey("Given a triad without a rising sign", t, func() {
		triad := model.SignTriad{Sun: zodiac.Leo, Moon: zodiac.Pisces, TimeUnknown: true}

		convey.Convey("Then it should encode rising_sign as null", func() {
			b, err := json.Marshal(triad)
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(b), convey.ShouldContainSubstring, `"sun_sign":"Leo"`)
			convey.So(string(b), convey.ShouldContainSubstring, `"moon_sign":"Pisces"`)
			convey.So(string(b), convey.ShouldContainSubstring, `"rising_sign":null`)
			convey.So(triad.HasRising(), convey.ShouldBeFalse)
		})
	})
}
