// rxsim runs the receiver pipeline on the host with a stub radio and a
// console strip: a scripted transmitter sends heartbeats for a while and
// then goes silent, which exercises the no-signal cutoff end to end.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lumalink/internal/anim"
	"github.com/coreman2200/funtimes-lumalink/internal/link"
	"github.com/coreman2200/funtimes-lumalink/internal/link/stub"
	"github.com/coreman2200/funtimes-lumalink/internal/protocol"
	"github.com/coreman2200/funtimes-lumalink/internal/receiver"
	"github.com/coreman2200/funtimes-lumalink/internal/status"
	"github.com/coreman2200/funtimes-lumalink/internal/store"
	"github.com/coreman2200/funtimes-lumalink/internal/strip"
)

type noButton struct{}

func (noButton) Level() bool { return false }
func (noButton) Take() (time.Time, bool) { return time.Time{}, false }

func main() {
	var (
		count = flag.Int("count", 30, "pixels on the simulated strip")
		seq   = flag.Int("seq", 2, "sequence id the scripted transmitter sends")
		send  = flag.Duration("send", 5*time.Second, "how long the transmitter stays alive")
		run   = flag.Duration("run", 10*time.Second, "total simulation time")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cipher, err := protocol.NewCipher(protocol.GenerateKey())
	if err != nil {
		log.Fatal().Err(err).Msg("cipher")
	}

	radio := stub.New()
	drv, err := strip.NewConsole(*count)
	if err != nil {
		log.Fatal().Err(err).Msg("console strip")
	}
	defer drv.Close()

	// Scripted transmitter: heartbeat the chosen sequence, then vanish.
	go func() {
		tx := link.NewTransmitter(radio, cipher)
		for i := 0; i < int(*seq); i++ {
			_ = tx.Cycle(time.Now())
		}
		deadline := time.Now().Add(*send)
		for time.Now().Before(deadline) {
			_ = tx.Tick(time.Now())
			time.Sleep(50 * time.Millisecond)
		}
		log.Info().Msg("scripted transmitter gone silent")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *run)
	defer cancel()

	// The stub radio is one shared medium here: everything the scripted
	// transmitter sends loops straight back into the receive buffer.
	stub.Connect(ctx.Done(), radio, radio)

	rcv := receiver.New(receiver.Deps{
		Link:   link.NewReceiver(radio, cipher),
		Button: noButton{},
		Engine: anim.New(*count),
		Strip:  drv,
		Store:  store.Open("rxsim-state.bin"),
		Status: status.NewRefresher(&status.ConsoleSink{Out: os.Stderr}),
	}, 1, *count)

	log.Info().Int("seq", *seq).Dur("send", *send).Msg("rxsim starting")
	_ = rcv.Run(ctx)
}
