package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hierovision/hierovision/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				u, err := c.Session().Login(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", u.Name, u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				resp, err := c.Session().Signup(ctx, name, email, password)
				if err != nil {
					return err
				}
				msg := resp.Message
				if msg == "" {
					msg = "Account created"
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name (required)")
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				c.Session().Logout(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the stored session with the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				u, err := c.Session().Verify(ctx)
				if err != nil {
					return err
				}
				printUser(cmd, u)
				return nil
			})
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the profile",
	}

	var name, bio string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change the name or bio",
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd client.ProfileUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("bio") {
				upd.Bio = &bio
			}
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				u, err := c.Session().UpdateProfile(ctx, upd)
				if err != nil {
					return err
				}
				if u == nil {
					return client.ErrNotAuthenticated
				}
				printUser(cmd, u)
				return nil
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "new full name")
	update.Flags().StringVar(&bio, "bio", "", "new bio")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the server's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *client.Client) error {
				u, err := c.GetProfile(ctx)
				if err != nil {
					return err
				}
				printUser(cmd, u)
				return nil
			})
		},
	}

	profile.AddCommand(update, show)
	return profile
}

func printUser(cmd *cobra.Command, u *client.User) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)", u.Name, u.Email, u.ID)
	if u.Bio != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " - %s", u.Bio)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
