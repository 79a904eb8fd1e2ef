package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-lumalink/internal/button"
	"github.com/coreman2200/funtimes-lumalink/internal/config"
	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/link/nrf24"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
)

// The transmitter's only job is to keep one packet per action and one per
// heartbeat interval in the air; all interpretation happens on the
// receiver.
func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		cyclePin   = flag.String("cycle", "GPIO23", "cycle-sequence button pin (active low)")
		offPin     = flag.String("off", "GPIO24", "off button pin (active low)")
		channel    = flag.Int("channel", 76, "RF channel")
		keyHex     = flag.String("key", "", "pre-shared link key (hex)")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	cfg := &config.Config{
		Radio: config.Radio{Channel: uint8(*channel), Key: *keyHex},
	}
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		cfg = c
	}

	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}

	radio, err := nrf24.New(cfg.Radio.SPIDev, cfg.Radio.CEPin)
	if err != nil {
		log.Fatal().Err(err).Msg("radio init failed")
	}
	defer radio.Close()

	key, err := cfg.Radio.KeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("link key")
	}
	cipher, err := protocol.NewCipher(key)
	if err != nil {
		log.Fatal().Err(err).Msg("link cipher")
	}

	tx := link.NewTransmitter(radio, cipher)
	if err := tx.Initialise(cfg.Radio.Channel); err != nil {
		log.Fatal().Err(err).Msg("radio configure failed")
	}

	cycle, err := button.NewMonitor(*cyclePin)
	if err != nil {
		log.Fatal().Err(err).Msg("cycle button init failed")
	}
	off, err := button.NewMonitor(*offPin)
	if err != nil {
		log.Fatal().Err(err).Msg("off button init failed")
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Int("channel", int(cfg.Radio.Channel)).Msg("lumalink transmitter up")
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case s := <-ch:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			return
		case <-ticker.C:
			now := time.Now()
			if _, pressed := cycle.Take(); pressed {
				if err := tx.Cycle(now); err == nil {
					log.Info().Uint8("sequence", tx.Sequence()).Msg("cycled")
				}
			}
			if _, pressed := off.Take(); pressed {
				if err := tx.Off(now); err == nil {
					log.Info().Msg("off")
				}
			}
			_ = tx.Tick(now)
		}
	}
}
