package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"smart-search-be/pkg/events"
	pktNats "smart-search-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func eventsCMD() *cobra.Command {
	var (
		natsURL   string
		eventType string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail domain events from NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := pktNats.NewSubscriber(natsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			// ephemeral consumer: tailing should not leave state behind
			err = sub.Subscribe(ctx, eventType, "", func(_ context.Context, ev events.Event) error {
				data, _ := json.Marshal(ev.Payload())
				switch ev.EventType() {
				case events.SearchTurnFailed:
					color.Red("%s %s %s", ev.Timestamp().Format("15:04:05"), ev.EventType(), data)
				case events.SessionCleared:
					color.Yellow("%s %s %s", ev.Timestamp().Format("15:04:05"), ev.EventType(), data)
				default:
					color.Green("%s %s %s", ev.Timestamp().Format("15:04:05"), ev.EventType(), data)
				}
				return nil
			})
			if err != nil {
				return err
			}

			color.Cyan("Listening for %s events on %s (Ctrl+C to stop)", eventType, natsURL)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", getenv("NATS_URL", "nats://localhost:4222"), "NATS server URL")
	cmd.Flags().StringVar(&eventType, "type", "*", "event type to follow")
	return cmd
}
