package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"draw_notification_bot/cmd/notifier/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
