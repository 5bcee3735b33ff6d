package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hierovision/hierovision/client"
)

func newLandmarksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "landmarks",
		Short: "Browse landmarks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every landmark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Landmarks().Load(ctx); err != nil {
					return err
				}
				for _, l := range c.Landmarks().Landmarks() {
					printLandmark(cmd, l)
				}
				return nil
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <landmark-id>",
		Short: "Show one landmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				l, err := c.Landmarks().Get(ctx, args[0])
				if err != nil {
					return err
				}
				printLandmark(cmd, *l)
				if l.Description != "" {
					fmt.Fprintln(cmd.OutOrStdout(), l.Description)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newBookmarksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Manage bookmarked landmarks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List bookmarked landmarks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if c.Session().User() == nil {
					return client.ErrNotAuthenticated
				}
				if err := c.Bookmarks().Load(ctx); err != nil {
					return err
				}
				for _, b := range c.Bookmarks().Bookmarks() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.LandmarkID, b.CreatedAt)
				}
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <landmark-id>",
		Short: "Bookmark a landmark, or remove the bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Bookmarks().Load(ctx); err != nil {
					return err
				}
				on, err := c.Bookmarks().Toggle(ctx, args[0])
				if err != nil {
					return err
				}
				if on {
					fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s\n", args[0])
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %s\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func printLandmark(cmd *cobra.Command, l client.Landmark) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s (%d reviews)\n",
		l.ID, l.Name, l.Location, strconv.FormatFloat(l.AverageRating, 'f', 1, 64), l.ReviewCount)
}
