package commands

import (
	"github.com/spf13/cobra"

	"github.com/stratalab/gensync/track"
	"github.com/stratalab/gensync/wire"
)

// NewWatchCommand follows an already-running job without a request-scoped
// stream: push channel plus polling fallback, the way the dashboard does
// after a navigation.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <project-id>",
		Short: "Follow an in-flight job by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup()
			if err != nil {
				return err
			}
			jobID := args[0]

			store := track.NewStore()

			// Seed from the current snapshot so a job that already finished
			// resolves without waiting for a push event.
			if project, err := client.Project(cmd.Context(), jobID); err == nil {
				store.Apply(wire.NormalizeProject(project))
			}

			channel := connectPush(cmd, cfg)
			defer channel.Disconnect()

			f := &follower{
				store:   store,
				channel: channel,
				client:  client,
				jobID:   jobID,
			}
			job, err := f.follow(cmd.Context())
			if err != nil {
				return err
			}
			return report(job)
		},
	}
}
