package cli

import (
	"fmt"
	"time"

	"github.com/dom/tickify/internal/client"
	"github.com/dom/tickify/internal/events"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print checklist changes as they happen, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}

			a.print(cmd, a.render.Success("Watching "+a.session.DisplayName()))
			return client.Watch(cmd.Context(), a.api.FeedURL(a.session.Token), a.logger, func(msg *events.Message) {
				if msg.Item == nil {
					return
				}
				at := time.UnixMilli(msg.Timestamp).Format("15:04:05")
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-13s %s\n", at, msg.Type, msg.Item.Text)
			})
		},
	}
}
