package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"healthtracker/internal/models"
	"healthtracker/pkg/client"

	"github.com/spf13/cobra"
)

func (a *cli) registerCmd() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := a.newClient().Register(cmd.Context(), username, email, password)
			if err != nil {
				return err
			}
			if err := a.remember(auth); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s. Logged in as %s.\n", auth.Message, auth.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := a.newClient().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.remember(auth); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s. Welcome, %s.\n", auth.Message, auth.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := clearCredentials(a.credentialsPath()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session(cmd.Context(), func(ctx context.Context, c *client.Client) error {
				user, err := c.Verify(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s <%s>\n", user.Username, user.Email)
				return nil
			})
		},
	}
}

func (a *cli) logCmd() *cobra.Command {
	var in models.TrackInput
	cmd := &cobra.Command{
		Use:   "log [date]",
		Short: "Record a day's metrics, replacing any earlier entry for that day",
		Long: "Record steps, calories burned, distance and weight for a day (YYYY-MM-DD,\n" +
			"default today in UTC). Metrics not given keep the day's recorded value,\n" +
			"or 0 for a new day.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := today()
			if len(args) == 1 {
				date = args[0]
			}
			return a.session(cmd.Context(), func(ctx context.Context, c *client.Client) error {
				store := client.NewTrackStore(c)
				if err := store.Load(ctx); err != nil {
					return err
				}
				if existing := store.Filter(date); len(existing) > 0 {
					prefill(cmd, &in, existing[0])
				}
				saved, err := store.Upsert(ctx, date, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Saved %s.\n", saved.Date)
				printTracks(a, []models.TrackResponse{*saved})
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&in.Steps, "steps", 0, "steps taken")
	cmd.Flags().IntVar(&in.CaloriesBurned, "calories", 0, "calories burned")
	cmd.Flags().Float64Var(&in.DistanceCovered, "distance", 0, "distance covered (km)")
	cmd.Flags().Float64Var(&in.Weight, "weight", 0, "body weight (kg)")
	return cmd
}

func (a *cli) listCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.session(cmd.Context(), func(ctx context.Context, c *client.Client) error {
				store := client.NewTrackStore(c)
				if err := store.Load(ctx); err != nil {
					return err
				}
				tracks := store.Filter(date)
				if len(tracks) == 0 {
					if date != "" {
						fmt.Fprintf(a.out, "No record for %s.\n", date)
					} else {
						fmt.Fprintln(a.out, "No records yet.")
					}
					return nil
				}
				printTracks(a, tracks)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "only show this day (YYYY-MM-DD)")
	return cmd
}

func (a *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <date>",
		Short: "Delete the record for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.session(cmd.Context(), func(ctx context.Context, c *client.Client) error {
				if err := client.NewTrackStore(c).Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted %s.\n", args[0])
				return nil
			})
		},
	}
}

// prefill copies the day's recorded metrics into in for every flag the user
// did not set. The server replaces all four values on each write.
func prefill(cmd *cobra.Command, in *models.TrackInput, existing models.TrackResponse) {
	flags := cmd.Flags()
	if !flags.Changed("steps") {
		in.Steps = existing.Steps
	}
	if !flags.Changed("calories") {
		in.CaloriesBurned = existing.CaloriesBurned
	}
	if !flags.Changed("distance") {
		in.DistanceCovered = existing.DistanceCovered
	}
	if !flags.Changed("weight") {
		in.Weight = existing.Weight
	}
}

func today() string {
	return time.Now().UTC().Format(models.DateLayout)
}

func printTracks(a *cli, tracks []models.TrackResponse) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSTEPS\tCALORIES\tDISTANCE\tWEIGHT")
	for _, t := range tracks {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.1f\n", t.Date, t.Steps, t.CaloriesBurned, t.DistanceCovered, t.Weight)
	}
	w.Flush()
}
