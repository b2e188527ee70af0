package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opp/internal/entity"
	"opp/internal/service/admin"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	var (
		image    string
		category string
		language string
		explicit bool
		keywords []string
	)

	cmd := &cobra.Command{
		Use:   "init TITLE DESCRIPTION LINK AUTHOR EMAIL",
		Short: "Initialize the podcast channel",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			return srv.InitializeChannel(cmd.Context(), admin.ChannelInput{
				Title:       args[0],
				Description: args[1],
				Link:        args[2],
				Author:      args[3],
				Email:       args[4],
				Image:       image,
				Category:    category,
				Language:    language,
				Explicit:    explicit,
				Keywords:    keywords,
			})
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "Channel image URL")
	cmd.Flags().StringVar(&category, "category", "", "What kind of podcast is this?")
	cmd.Flags().StringVar(&language, "language", "", "Language code, default 'en'")
	cmd.Flags().BoolVar(&explicit, "explicit", false, "Mark the channel explicit")
	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "Keyword describing the podcast content (repeatable)")

	return cmd
}

func newShowChannelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show-channel",
		Short: "Display the channel info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			ch, err := srv.GetChannel(cmd.Context())
			if err != nil {
				return err
			}

			keywords := "n/a"
			if ch.Keywords != nil {
				keywords = strings.Join(ch.Keywords, ", ")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\n", ch.Title)
			fmt.Fprintf(out, "Description: %s\n", ch.Description)
			fmt.Fprintf(out, "Link: %s\n", ch.Link)
			fmt.Fprintf(out, "Author: %s\n", ch.Author)
			fmt.Fprintf(out, "Email: %s\n", ch.Email)
			fmt.Fprintf(out, "Category: %s\n", ch.Category)
			fmt.Fprintf(out, "Language: %s\n", ch.Language)
			fmt.Fprintf(out, "Explicit: %t\n", ch.Explicit)
			fmt.Fprintf(out, "Keywords: %s\n", keywords)

			return nil
		},
	}
}

func newUpdateChannelCommand(ctx *commandContext) *cobra.Command {
	var (
		title         string
		description   string
		link          string
		image         string
		author        string
		email         string
		category      string
		language      string
		explicit      bool
		keywords      []string
		clearKeywords bool
	)

	cmd := &cobra.Command{
		Use:   "update-channel",
		Short: "Update the channel info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := ctx.adminService()
			if err != nil {
				return err
			}

			// Only flags the caller actually set end up in the patch, so
			// --explicit=false and cleared keywords survive as real values.
			var patch entity.ChannelPatch

			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("link") {
				patch.Link = &link
			}
			if flags.Changed("image") {
				patch.Image = &image
			}
			if flags.Changed("author") {
				patch.Author = &author
			}
			if flags.Changed("email") {
				patch.Email = &email
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("language") {
				patch.Language = &language
			}
			if flags.Changed("explicit") {
				patch.Explicit = &explicit
			}
			if clearKeywords {
				empty := []string{}
				patch.Keywords = &empty
			} else if flags.Changed("keyword") {
				patch.Keywords = &keywords
			}

			return srv.UpdateChannel(cmd.Context(), patch)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Describe the channel")
	cmd.Flags().StringVar(&link, "link", "", "URL")
	cmd.Flags().StringVar(&image, "image", "", "Channel image URL")
	cmd.Flags().StringVar(&author, "author", "", "Podcast author")
	cmd.Flags().StringVar(&email, "email", "", "Author email")
	cmd.Flags().StringVar(&category, "category", "", "What kind of podcast is this?")
	cmd.Flags().StringVar(&language, "language", "", "Language code")
	cmd.Flags().BoolVar(&explicit, "explicit", false, "Mark the channel explicit")
	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "Keyword describing the podcast content (repeatable)")
	cmd.Flags().BoolVar(&clearKeywords, "clear-keywords", false, "Remove all keywords")

	return cmd
}
