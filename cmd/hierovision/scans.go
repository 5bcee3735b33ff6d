package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hierovision/hierovision/client"
)

func newScansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Browse your scan history",
	}

	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "List one page of scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.ListScans(ctx, page, perPage)
				if err != nil {
					return err
				}
				for _, s := range resp.Scans {
					printScan(cmd, s)
				}
				if p := resp.Pagination; p != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d scans)\n", p.Page, p.Pages, p.Total)
				}
				return nil
			})
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&perPage, "per-page", 10, "scans per page")

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the latest scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				scans, err := c.RecentScans(ctx, limit)
				if err != nil {
					return err
				}
				for _, s := range scans {
					printScan(cmd, s)
				}
				return nil
			})
		},
	}
	recent.Flags().IntVar(&limit, "limit", 5, "how many scans")

	get := &cobra.Command{
		Use:   "get <scan-id>",
		Short: "Show one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				s, err := c.GetScan(ctx, args[0])
				if err != nil {
					return err
				}
				printScan(cmd, *s)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Delete one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				if err := c.DeleteScan(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scan %s deleted\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, recent, get, del)
	return cmd
}

func newTranslateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <text>...",
		Short: "Write English text in hieroglyphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				doc, err := c.TranslateText(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				return printDocument(cmd, doc)
			})
		},
	}
}

func newPredictCmd(a *app) *cobra.Command {
	var translate bool

	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Classify a hieroglyph photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				predict := c.Predict
				if translate {
					predict = c.PredictTranslate
				}
				res, err := predict(ctx, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				if !res.OK() {
					return fmt.Errorf("prediction failed with status %d: %v", res.StatusCode, res.Body)
				}
				return printDocument(cmd, res.Body)
			})
		},
	}
	cmd.Flags().BoolVar(&translate, "translate", false, "also translate the recognized sign")
	return cmd
}

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Show tour bookings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				list, err := c.ListBookings(ctx)
				if err != nil {
					return err
				}
				for _, b := range list {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%.2f\t%s\n",
						b.ID, b.LandmarkID, b.Date, b.Visitors, b.TotalPrice, b.Status)
				}
				return nil
			})
		},
	})
	return cmd
}

func printScan(cmd *cobra.Command, s client.Scan) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", s.ID, s.Timestamp, s.Description)
}

func printDocument(cmd *cobra.Command, doc client.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
