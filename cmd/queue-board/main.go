// The queue-board command is a display surface: it polls the queue service
// and renders the projected queue as text, suitable for a wall monitor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bayline/queue-service/internal/board"
	"bayline/queue-service/internal/client"
	"bayline/queue-service/internal/logger"
	"bayline/queue-service/internal/queue"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	zlog := logger.New()
	defer func() { _ = zlog.Sync() }()

	baseURL := os.Getenv("BOARD_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	interval := 10 * time.Second
	if raw := os.Getenv("BOARD_POLL_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	poller := board.NewPoller(client.New(baseURL, nil), interval, renderBoard)
	poller.Run(ctx)
}

func renderBoard(view queue.View) {
	var b strings.Builder

	b.WriteString("\033[2J\033[H")
	fmt.Fprintf(&b, "%s\n\n", time.Now().Format("02.01.2006 15:04:05"))

	b.WriteString("IN SERVICE\n")
	if len(view.InService) == 0 {
		b.WriteString("  (no cars on a bay)\n")
	}
	for _, entry := range view.InService {
		fmt.Fprintf(&b, "  %s  %s\n", entry.TicketNumber, entry.Title)
	}

	b.WriteString("\nWAITING\n")
	if len(view.Waiting) == 0 {
		b.WriteString("  (queue is empty)\n")
	}
	for _, entry := range view.Waiting {
		line := fmt.Sprintf("  %2d. %s  %s", entry.Position, entry.TicketNumber, entry.Title)
		if entry.AppointmentAt != nil {
			line += "  booked " + entry.AppointmentAt.Format("15:04")
		}
		b.WriteString(line + "\n")
	}

	fmt.Print(b.String())
}
