package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodlinkhq/foodlink/internal/app/maintenance"
	"github.com/foodlinkhq/foodlink/internal/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			if err := database.AutoMigrate(env.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print platform impact figures as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			stats, err := env.statsService()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats.GetStats(cmd.Context()))
		},
	}
}

func newLeaderboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top donors and cities as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			stats, err := env.statsService()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats.GetLeaderboard(cmd.Context()))
		},
	}
}

func newVerifyNGOCmd(opts *rootOptions) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "verify-ngo <user-id>",
		Short: "Mark an NGO's organisation details as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			profiles, err := env.profileService()
			if err != nil {
				return err
			}
			if err := profiles.VerifyNGO(cmd.Context(), args[0], !revoke); err != nil {
				return err
			}
			state := "verified"
			if revoke {
				state = "unverified"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ngo %s %s\n", args[0], state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "Clear the verified flag instead of setting it")
	return cmd
}

func newExpiredCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expired",
		Short: "Count available donations whose expiry date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			count, err := maintenance.ReportExpiredListings(cmd.Context(), env.repo, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d expired listings still available\n", count)
			return nil
		},
	}
}
