package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratalab/gensync/api"
	"github.com/stratalab/gensync/config"
	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/logger"
	"github.com/stratalab/gensync/push"
	"github.com/stratalab/gensync/stream"
	"github.com/stratalab/gensync/track"
	"github.com/stratalab/gensync/wire"
)

func setup() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}
	return cfg, api.New(cfg), nil
}

// connectPush brings up the shared push channel, best-effort. Generation can
// complete on the stream alone; the channel covers drops and navigation.
func connectPush(cmd *cobra.Command, cfg *config.Config) *push.Channel {
	channel := push.FromConfig(cfg)
	if err := channel.Connect(cmd.Context()); err != nil {
		logger.Warnw("Push channel unavailable, continuing without it", "error", err.Error())
	}
	return channel
}

// NewGenerateCommand submits a new generation job and follows it.
func NewGenerateCommand() *cobra.Command {
	var req wire.GenerateRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Submit a generation job and follow it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup()
			if err != nil {
				return err
			}

			s, err := client.Submit(cmd.Context(), req)
			if err != nil {
				return describeSubmitError(err)
			}
			defer s.Close()

			return followStream(cmd, cfg, client, s)
		},
	}

	cmd.Flags().StringVar(&req.CompanyName, "company", "", "company name (required)")
	cmd.Flags().StringVar(&req.Industry, "industry", "technology", "industry")
	cmd.Flags().StringVar(&req.WebsiteType, "type", "business", "website type")
	cmd.Flags().StringVar(&req.DesignStyle, "style", "modern", "design style")
	cmd.Flags().StringVar(&req.CodeType, "code", "HTML", "output format: HTML or REACT")
	cmd.Flags().StringVar(&req.AIModel, "model", "GEMINI", "generation engine")
	cmd.Flags().StringVar(&req.ColorScheme.Primary, "primary", "#0ea5e9", "primary color")
	cmd.Flags().StringVar(&req.ColorScheme.Secondary, "secondary", "#3b82f6", "secondary color")
	cmd.Flags().StringVar(&req.ColorScheme.Accent, "accent", "#06b6d4", "accent color")

	return cmd
}

// NewRegenerateCommand re-runs generation for an existing project.
func NewRegenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate <project-id>",
		Short: "Re-run generation for an existing project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup()
			if err != nil {
				return err
			}

			s, err := client.Regenerate(cmd.Context(), args[0])
			if err != nil {
				return describeSubmitError(err)
			}
			defer s.Close()

			return followStream(cmd, cfg, client, s)
		},
	}
}

// followStream learns the job id from the stream's first event - the submit
// call's "job id plus initial status" - then follows all transports.
func followStream(cmd *cobra.Command, cfg *config.Config, client *api.Client, s *stream.Stream) error {
	first, err := s.Next()
	if err != nil {
		return errors.Wrap(err, "generation stream ended before an initial event")
	}
	if first.ProjectID == "" {
		return errors.New("initial event carried no job id")
	}

	store := track.NewStore()
	store.Apply(wire.Normalize(first))
	pterm.Info.Printf("Job %s started\n", first.ProjectID)

	channel := connectPush(cmd, cfg)
	defer channel.Disconnect()

	f := &follower{
		store:   store,
		stream:  s,
		channel: channel,
		client:  client,
		jobID:   first.ProjectID,
	}
	job, err := f.follow(cmd.Context())
	if err != nil {
		return err
	}
	return report(job)
}

// describeSubmitError prints a friendly message for the terminal failure
// modes of a submission; retry is a user-initiated re-submit.
func describeSubmitError(err error) error {
	switch {
	case errors.IsValidationError(err):
		pterm.Error.Println("Invalid job specification:", err.Error())
	case errors.IsUnauthorizedError(err):
		pterm.Error.Println("Session invalid - set GENSYNC_TOKEN and try again")
	case errors.IsSubmissionError(err):
		pterm.Error.Println("Server rejected submission:", err.Error())
	case errors.IsTransportError(err):
		pterm.Error.Println("Could not reach the generation service:", err.Error())
	}
	return err
}
