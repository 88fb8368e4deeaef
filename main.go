package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/blinkd/cmd"
	"github.com/smazurov/blinkd/internal/api"
	"github.com/smazurov/blinkd/internal/config"
	"github.com/smazurov/blinkd/internal/device"
	"github.com/smazurov/blinkd/internal/events"
	"github.com/smazurov/blinkd/internal/gpio"
	"github.com/smazurov/blinkd/internal/led"
	"github.com/smazurov/blinkd/internal/logging"
	"github.com/smazurov/blinkd/internal/metrics"
	"github.com/smazurov/blinkd/internal/metrics/exporters"
	"github.com/smazurov/blinkd/internal/systemd"
	"github.com/smazurov/blinkd/internal/updater"
	"github.com/smazurov/blinkd/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings; empty disables auth
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password, plain or bcrypt hash" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// GPIO settings
	GPIOBackend  string `name:"gpio-backend" help:"GPIO backend (auto, mmio, periph, sysfs, sim)" default:"auto" toml:"gpio.backend" env:"GPIO_BACKEND"`
	GPIOPin      int    `name:"gpio-pin" help:"BCM pin number of the LED" default:"17" toml:"gpio.pin" env:"GPIO_PIN"`
	GPIOMemPath  string `name:"gpio-mem-path" help:"GPIO memory device (mmio)" default:"/dev/gpiomem" toml:"gpio.mem_path" env:"GPIO_MEM_PATH"`
	GPIOBaseAddr int64  `name:"gpio-base-addr" help:"GPIO register base address when mapping /dev/mem (mmio)" default:"0" toml:"gpio.base_addr" env:"GPIO_BASE_ADDR"`
	GPIOLEDName  string `name:"gpio-led-name" help:"LED class device name (sysfs)" default:"ACT" toml:"gpio.led_name" env:"GPIO_LED_NAME"`

	// LED settings
	LEDFrequencyHz int  `name:"led-frequency-hz" help:"Blink frequency in Hz" default:"1" toml:"led.frequency_hz" env:"LED_FREQUENCY_HZ"`
	LEDAutostart   bool `name:"led-autostart" help:"Start blinking on boot" default:"false" toml:"led.autostart" env:"LED_AUTOSTART"`

	// Metrics settings
	MetricsEnabled bool `name:"metrics-enabled" help:"Serve Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Update settings
	UpdateEnabled    bool   `name:"update-enabled" help:"Enable the self-update API" default:"true" toml:"update.enabled" env:"UPDATE_ENABLED"`
	UpdateRepository string `name:"update-repository" help:"GitHub repository for releases" default:"smazurov/blinkd" toml:"update.repository" env:"UPDATE_REPOSITORY"`
	UpdatePrerelease bool   `name:"update-prerelease" help:"Include prereleases" default:"false" toml:"update.prerelease" env:"UPDATE_PRERELEASE"`
	UpdateUnit       string `name:"update-unit" help:"systemd unit restarted after an update" default:"blinkd.service" toml:"update.unit" env:"UPDATE_UNIT"`

	// Logging settings; per-module levels come from [logging.modules]
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
}

func main() {
	var cli humacli.CLI

	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Initialize logging system
		loggingConfig := config.LoadLoggingConfig(opts.Config)
		loggingConfig.Level = opts.LoggingLevel
		loggingConfig.Format = opts.LoggingFormat
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")
		logger.Info("Starting blinkd", "version", version.String(), "config", opts.Config)

		// Create event bus for in-process event handling
		eventBus := events.New()
		logging.SetLogCallback(func(entry logging.LogEntry) {
			eventBus.Publish(api.LogEntryEvent(entry))
		})

		frequency := uint32(led.DefaultFrequencyHz)
		if opts.LEDFrequencyHz >= 1 {
			frequency = uint32(opts.LEDFrequencyHz)
		} else {
			logger.Warn("Ignoring invalid LED frequency", "frequency_hz", opts.LEDFrequencyHz, "default", frequency)
		}

		reg, err := gpio.New(gpio.Config{
			Backend:  opts.GPIOBackend,
			MemPath:  opts.GPIOMemPath,
			BaseAddr: opts.GPIOBaseAddr,
			LEDName:  opts.GPIOLEDName,
		}, logging.GetLogger("gpio"))
		if err != nil {
			logger.Error("Failed to open GPIO backend", "backend", opts.GPIOBackend, "error", err)
			os.Exit(1)
		}

		dev, err := device.New(reg, device.Options{
			Pin:         opts.GPIOPin,
			FrequencyHz: frequency,
			Bus:         eventBus,
			Observers:   []led.Observer{metrics.LEDObserver{}},
		}, logging.GetLogger("led"))
		if err != nil {
			logger.Error("Failed to create LED device", "pin", opts.GPIOPin, "error", err)
			_ = reg.Close()
			os.Exit(1)
		}

		// Apply [led] changes from config.toml while running
		watcher := config.NewConfigWatcher(opts.Config, config.LoadLED, logging.GetLogger("config"))
		watcher.OnReload(func(c config.LED) {
			if c.FrequencyHz == 0 || c.FrequencyHz == dev.Snapshot().FrequencyHz {
				return
			}
			cmdText := "freq " + strconv.FormatUint(uint64(c.FrequencyHz), 10)
			if _, err := dev.Write([]byte(cmdText)); err != nil {
				logger.Warn("Failed to apply reloaded frequency", "frequency_hz", c.FrequencyHz, "error", err)
			}
		})

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
			Device:       dev,
			EventBus:     eventBus,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = exporters.HTTPHandler()
		}

		if opts.UpdateEnabled {
			var restarter updater.Restarter = updater.SignalRestarter{}
			if systemd.UnderSystemd() {
				restarter = systemd.NewUnitRestarter(opts.UpdateUnit, os.Geteuid() == 0)
			}
			updateService, updateErr := updater.NewService(updater.Options{
				Repository: opts.UpdateRepository,
				Prerelease: opts.UpdatePrerelease,
				Restarter:  restarter,
			})
			if updateErr != nil {
				logger.Warn("Update service unavailable", "error", updateErr)
			} else {
				apiOpts.UpdateService = updateService
			}
		}

		server := api.NewServer(apiOpts)
		notifier := systemd.NewNotifier(logging.GetLogger("systemd"))

		hooks.OnStart(func() {
			if attachErr := dev.Attach(); attachErr != nil {
				logger.Error("Failed to attach LED device", "error", attachErr)
				os.Exit(1)
			}
			if opts.LEDAutostart {
				if _, writeErr := dev.Write([]byte("start")); writeErr != nil {
					logger.Warn("Autostart failed", "error", writeErr)
				}
			}

			if _, statErr := os.Stat(opts.Config); statErr == nil {
				if watchErr := watcher.Start(); watchErr != nil {
					logger.Warn("Config watcher disabled", "error", watchErr)
				}
			}

			notifier.Ready("Serving LED on pin " + strconv.Itoa(opts.GPIOPin) + " via " + dev.Backend())

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			notifier.Stopping()

			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Warn("Error stopping config watcher", "error", stopErr)
			}
			// Stops and joins the blink task before the register is released
			if detachErr := dev.Detach(); detachErr != nil {
				logger.Error("Error detaching LED device", "error", detachErr)
			}
		})
	})

	cli.Root().Use = "blinkd"
	cli.Root().Short = "GPIO LED blink service"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreateCtlCmd())
	cli.Root().AddCommand(cmd.CreateUpdateCmd())
	cli.Root().AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(c *cobra.Command, _ []string) {
			info := version.Get()
			c.Printf("blinkd %s (%s, built %s, %s %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
		},
	})

	// Run the CLI
	cli.Run()
}
