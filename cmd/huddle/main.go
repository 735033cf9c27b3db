package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"huddle/internal/config"
	"huddle/internal/matrix"
	"huddle/internal/signaling"
	"huddle/internal/token"
	"huddle/internal/voice"
	"huddle/pkg/logger"
)

// minter bridges the identity credential to the token relay.
type minter struct {
	tokens *token.Client
	matrix *matrix.Client
}

func (m minter) Mint(ctx context.Context, roomID string) (string, string, error) {
	grant, err := m.tokens.Mint(ctx, m.matrix.AccessToken(), roomID)
	if err != nil {
		return "", "", err
	}
	return grant.URL, grant.Token, nil
}

func printEvents(events <-chan voice.Event) {
	for e := range events {
		switch ev := e.(type) {
		case voice.VoiceJoined:
			fmt.Printf("joined %s\n", ev.Room)
		case voice.VoiceLeft:
			fmt.Println("left voice")
		case voice.ParticipantsUpdated:
			if len(ev.Names) == 0 {
				fmt.Println("nobody else here")
			} else {
				fmt.Printf("in call: %s\n", strings.Join(ev.Names, ", "))
			}
		case voice.Error:
			fmt.Printf("voice error: %s\n", ev.Message)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	hs := matrix.NewClient(cfg.Homeserver)
	if err := hs.Login(ctx, cfg.User, cfg.Password); err != nil {
		log.Fatal().Err(err).Msg("homeserver login failed")
	}

	announcer := signaling.NewAnnouncer(hs)
	creds := minter{tokens: token.NewClient(cfg.TokenRelay), matrix: hs}
	mgr := voice.NewManager(creds, announcer, voice.Options{PlaybackRate: cfg.PlaybackRate})
	go printEvents(mgr.Events())

	fmt.Println("commands: join <room-id> | leave | mute | unmute | quit")
	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			mgr.Leave()
			return
		case line, ok := <-lines:
			if !ok {
				mgr.Leave()
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "join":
				if len(fields) != 2 {
					fmt.Println("usage: join <room-id>")
					continue
				}
				if err := mgr.Join(ctx, fields[1]); err != nil {
					fmt.Println("join failed:", err)
				}
			case "leave":
				mgr.Leave()
			case "mute":
				mgr.SetMuted(true)
			case "unmute":
				mgr.SetMuted(false)
			case "quit", "exit":
				mgr.Leave()
				return
			default:
				fmt.Println("unknown command:", fields[0])
			}
		}
	}
}
