package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run in the foreground and deliver due reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			a.termins.ScheduleAll(ctx)
			a.log.Info("watching for reminders",
				zap.Int("pending", len(a.dispatcher.Pending())),
				zap.String("data_dir", a.cfg.DataDir))
			fmt.Fprintf(cmd.OutOrStdout(), "watching %d pending reminders, ctrl-c to stop\n",
				len(a.dispatcher.Pending()))

			<-ctx.Done()
			a.log.Info("shutdown signal received")
			return nil
		},
	}
}
