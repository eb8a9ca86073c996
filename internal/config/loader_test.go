package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/okian/astrocore/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	config.EnvConfigFile,
	"ASTRO_ADDR",
	"ASTRO_QUEUE_SIZE",
	"ASTRO_WORKER_COUNT",
	"ASTRO_HOUSE_SYSTEM",
	"ASTRO_CACHE_BACKEND",
	"ASTRO_CACHE_TTL_SECONDS",
	"ASTRO_UNKNOWN_TIME_POLICY",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.HouseSystem, convey.ShouldEqual, "placidus")
			convey.So(cfg.UnknownTimePolicy, convey.ShouldEqual, "omit")
			convey.So(cfg.EventQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheMemory)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given an invalid config", t, func() {
		cfg := config.New()
		cfg.Addr = ""
		cfg.WorkerCount = 0
		cfg.CacheBackend = "memcached"

		convey.Convey("Then every problem should be reported", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr")
			convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
			convey.So(err.Error(), convey.ShouldContainSubstring, "memcached")
		})
	})

	convey.Convey("Given the redis backend without an address", t, func() {
		cfg := config.New()
		cfg.CacheBackend = config.CacheRedis
		cfg.RedisAddr = ""
		convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheMemory)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ASTRO_ADDR", ":8080")
			_ = os.Setenv("ASTRO_QUEUE_SIZE", "500")
			_ = os.Setenv("ASTRO_WORKER_COUNT", "4")
			_ = os.Setenv("ASTRO_HOUSE_SYSTEM", "whole_sign")
			_ = os.Setenv("ASTRO_CACHE_BACKEND", "NONE")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.HouseSystem, convey.ShouldEqual, "whole_sign")
				convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheNone)
			})
		})

		convey.Convey("When loading a YAML file overlaid by env", func() {
			path := filepath.Join(t.TempDir(), "astro.yaml")
			data := "addr: \":7070\"\nunknown_time_policy: noon\nworker_count: 3\n"
			convey.So(os.WriteFile(path, []byte(data), 0o600), convey.ShouldBeNil)
			_ = os.Setenv(config.EnvConfigFile, path)
			_ = os.Setenv("ASTRO_WORKER_COUNT", "9")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.UnknownTimePolicy, convey.ShouldEqual, "noon")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "nope.yaml"))
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When env produces an invalid config", func() {
			_ = os.Setenv("ASTRO_CACHE_TTL_SECONDS", "-5")
			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := config.Load(cctx)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}
