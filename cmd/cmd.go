package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"taskdigest/internal/config"
)

type command func(ctx context.Context) error

type commandRegistry map[string]command

var commands = commandRegistry{
	"noop":  noopCmd,
	"run":   runCmd,
	"watch": watchCmd,
}

func Run() {
	cmd := config.Gist().String(config.CMD)
	cmdFn, ok := commands[cmd]
	if !ok {
		help()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmdFn(ctx); err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("command failed")
	}
}

func help() {
	fmt.Println("Usage: taskdigest [command]")
	fmt.Println("Commands: noop, run, watch")
	fmt.Println("Example: taskdigest --cmd run")
	fmt.Println("Config params (name|required|default):\v")
	fmt.Println(config.Sprint())
}
