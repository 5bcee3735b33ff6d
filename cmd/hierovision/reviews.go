package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hierovision/hierovision/client"
)

func newReviewsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write landmark reviews",
	}

	list := &cobra.Command{
		Use:   "list <landmark-id>",
		Short: "List the reviews of a landmark, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Reviews().Load(ctx, args[0]); err != nil {
					return err
				}
				for _, r := range c.Reviews().Reviews() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", r.ID, r.Rating, r.UserName, r.Comment)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "average %.1f\n", c.Reviews().AverageRating())
				return nil
			})
		},
	}

	var rating int
	var comment string

	add := &cobra.Command{
		Use:   "add <landmark-id>",
		Short: "Review a landmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Reviews().Load(ctx, args[0]); err != nil {
					return err
				}
				r, err := c.Reviews().Add(ctx, rating, comment)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Review %s added\n", r.ID)
				return refreshLandmark(ctx, cmd, c, args[0])
			})
		},
	}
	add.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5 (required)")
	add.Flags().StringVar(&comment, "comment", "", "review text (required)")
	_ = add.MarkFlagRequired("rating")
	_ = add.MarkFlagRequired("comment")

	update := &cobra.Command{
		Use:   "update <landmark-id> <review-id>",
		Short: "Change one of your reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Reviews().Load(ctx, args[0]); err != nil {
					return err
				}
				if _, err := c.Reviews().Update(ctx, args[1], rating, comment); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Review %s updated\n", args[1])
				return refreshLandmark(ctx, cmd, c, args[0])
			})
		},
	}
	update.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5 (required)")
	update.Flags().StringVar(&comment, "comment", "", "review text (required)")
	_ = update.MarkFlagRequired("rating")
	_ = update.MarkFlagRequired("comment")

	del := &cobra.Command{
		Use:   "delete <landmark-id> <review-id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.Reviews().Load(ctx, args[0]); err != nil {
					return err
				}
				if err := c.Reviews().Delete(ctx, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Review %s deleted\n", args[1])
				return refreshLandmark(ctx, cmd, c, args[0])
			})
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

// refreshLandmark prints the landmark's server-side aggregate after a
// review changed it.
func refreshLandmark(ctx context.Context, cmd *cobra.Command, c *client.Client, landmarkID string) error {
	l, err := c.Landmarks().Refresh(ctx, landmarkID)
	if err != nil {
		return err
	}
	printLandmark(cmd, *l)
	return nil
}
