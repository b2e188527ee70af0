package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"opp/internal/entity"
	"opp/internal/service/admin"
)

func newCreateEpisodeCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		description string
		pubDate     string
	)

	cmd := &cobra.Command{
		Use:   "create-episode FILE",
		Short: "Publish a new episode from an audio file (mp3, ogg vorbis, or opus)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			// Tags pre-fill whatever the caller left out.
			details, err := srv.ExtractDetails(f)
			if err != nil {
				return err
			}

			if title == "" {
				title = details.Title
			}
			if description == "" {
				description = details.Description
			}

			date := entity.Today()
			if pubDate != "" {
				date, err = entity.ParseDate(pubDate)
				if err != nil {
					return err
				}
			}

			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return err
			}

			guid, err := srv.CreateEpisode(cmd.Context(), admin.EpisodeInput{
				Title:           title,
				Description:     description,
				Duration:        details.Duration,
				PublicationDate: date,
				AudioFormat:     string(details.AudioFormat),
			}, f)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), guid)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title (defaults to the audio title tag)")
	cmd.Flags().StringVar(&description, "description", "", "Describe the episode (defaults to the audio description tag)")
	cmd.Flags().StringVar(&pubDate, "publication-date", "", "Date in YYYY-MM-DD format (defaults to today)")

	return cmd
}

func newListEpisodesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-episodes",
		Short: "List episodes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			episodes, err := srv.GetEpisodes(cmd.Context())
			if err != nil {
				return err
			}

			for _, ep := range episodes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: (%s) %s - %s\n", ep.GUID, ep.PublicationDate, ep.Title, ep.Description)
			}

			return nil
		},
	}
}

func newUpdateEpisodeCommand(ctx *commandContext) *cobra.Command {
	var (
		title       string
		description string
		duration    int
		pubDate     string
	)

	cmd := &cobra.Command{
		Use:   "update-episode GUID",
		Short: "Update an episode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			var patch entity.EpisodePatch

			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("duration") {
				patch.Duration = &duration
			}
			if flags.Changed("publication-date") {
				date, err := entity.ParseDate(pubDate)
				if err != nil {
					return err
				}
				patch.PublicationDate = &date
			}

			return srv.UpdateEpisode(cmd.Context(), args[0], patch)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Describe the episode")
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in seconds")
	cmd.Flags().StringVar(&pubDate, "publication-date", "", "Date in YYYY-MM-DD format")

	return cmd
}

func newDeleteEpisodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-episode GUID",
		Short: "Delete an episode and its audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			return srv.DeleteEpisode(cmd.Context(), args[0])
		},
	}
}
