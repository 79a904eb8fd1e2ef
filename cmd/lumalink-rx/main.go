package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/button"
	"github.com/coreman2200/funtimes-lumalink/internal/config"
	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/link/nrf24"
	"github.com/coreman2200/funtimes-lumalink/internal/link/stub"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
	"github.com/coreman2200/funtimes-lumalink/internal/receiver"
	"github.com/coreman2200/funtimes-lumalink/internal/status"
	"github.com/coreman2200/funtimes-lumalink/internal/store"
	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		count      = flag.Int("count", 30, "pixels on the strip")
		buttonPin  = flag.String("button", "GPIO17", "mode button pin (active low)")
		channel    = flag.Int("channel", 76, "RF channel")
		keyHex     = flag.String("key", "", "pre-shared link key (hex)")
		statePath  = flag.String("state", "lumalink-state.bin", "identifier state file")
		addr       = flag.String("addr", ":8080", "status server listen address")
		sim        = flag.Bool("sim", false, "render the strip to the console and use the stub radio")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if !*debug {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// The config file provides the base; any flag given explicitly on the
	// command line overrides it per field.
	fl := cliFlags{
		count:   *count,
		button:  *buttonPin,
		channel: *channel,
		key:     *keyHex,
		state:   *statePath,
		addr:    *addr,
	}
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg := &config.Config{
		Strip:      config.Strip{Count: fl.count},
		Radio:      config.Radio{Driver: "nrf24", Channel: uint8(fl.channel), Key: fl.key},
		ButtonPin:  fl.button,
		StatePath:  fl.state,
		StatusAddr: fl.addr,
	}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = mergeConfig(c, fl, func(name string) bool { return setFlags[name] })
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}

	// Hardware bring-up. Per the error model these are terminal: a fixed
	// installation with broken hardware has nothing useful to retry.
	var drv strip.Driver
	var radio link.RadioDriver
	var btn button.Input

	if *sim {
		c, err := strip.NewConsole(cfg.Strip.Count)
		if err != nil {
			log.Fatal().Err(err).Msg("console strip init failed")
		}
		drv = c
		radio = stub.New()
		btn = &heldNever{}
	} else {
		s, err := strip.NewSPI(cfg.Strip.SPIDev, cfg.Strip.Count, cfg.Strip.FreqKHz)
		if err != nil {
			log.Fatal().Err(err).Msg("strip init failed")
		}
		drv = s

		if cfg.Radio.Driver == "stub" {
			radio = stub.New()
		} else {
			r, err := nrf24.New(cfg.Radio.SPIDev, cfg.Radio.CEPin)
			if err != nil {
				log.Fatal().Err(err).Msg("radio init failed")
			}
			radio = r
		}

		m, err := button.NewMonitor(cfg.ButtonPin)
		if err != nil {
			log.Fatal().Err(err).Msg("button init failed")
		}
		btn = m
	}
	defer drv.Close()
	defer radio.Close()

	key, err := cfg.Radio.KeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("link key")
	}
	cipher, err := protocol.NewCipher(key)
	if err != nil {
		log.Fatal().Err(err).Msg("link cipher")
	}

	rx := link.NewReceiver(radio, cipher)
	if err := rx.Initialise(cfg.Radio.Channel); err != nil {
		log.Fatal().Err(err).Msg("radio configure failed")
	}

	st := store.Open(cfg.StatePath)
	ident, err := st.LoadIdentifier()
	if err != nil {
		log.Fatal().Err(err).Msg("identifier load failed")
	}

	srv := status.NewServer()
	go srv.Serve(cfg.StatusAddr)
	sinks := status.NewRefresher(&status.ConsoleSink{Out: os.Stdout}, srv)

	rcv := receiver.New(receiver.Deps{
		Link:   rx,
		Button: btn,
		Engine: anim.New(cfg.Strip.Count),
		Strip:  drv,
		Store:  st,
		Status: sinks,
	}, ident, cfg.Strip.Count)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-ch
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	}()

	log.Info().
		Uint8("identifier", ident).
		Str("session", srv.Session()).
		Int("channel", int(cfg.Radio.Channel)).
		Msg("lumalink receiver up")
	if err := rcv.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("receiver loop failed")
	}
}

// cliFlags carries the command-line values so flags the operator set
// explicitly can win over the config file per field.
type cliFlags struct {
	count   int
	button  string
	channel int
	key     string
	state   string
	addr    string
}

// mergeConfig layers the command line over the file config: explicitly set
// flags override the file, and file fields left empty fall back to the flag
// defaults.
func mergeConfig(file *config.Config, fl cliFlags, set func(name string) bool) *config.Config {
	cfg := *file
	if set("count") || cfg.Strip.Count == 0 {
		cfg.Strip.Count = fl.count
	}
	if set("button") || cfg.ButtonPin == "" {
		cfg.ButtonPin = fl.button
	}
	if set("channel") || cfg.Radio.Channel == 0 {
		cfg.Radio.Channel = uint8(fl.channel)
	}
	if set("key") || cfg.Radio.Key == "" {
		cfg.Radio.Key = fl.key
	}
	if set("state") || cfg.StatePath == "" {
		cfg.StatePath = fl.state
	}
	if set("addr") || cfg.StatusAddr == "" {
		cfg.StatusAddr = fl.addr
	}
	return &cfg
}

// heldNever stands in for the mode button in -sim runs without GPIO.
type heldNever struct{}

func (heldNever) Level() bool { return false }

func (heldNever) Take() (time.Time, bool) { return time.Time{}, false }
