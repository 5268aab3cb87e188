package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTeamCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Manage the current user and team",
	}
	cmd.AddCommand(newTeamJoinCmd(configPath))
	cmd.AddCommand(newTeamLeaveCmd(configPath))
	cmd.AddCommand(newTeamShowCmd(configPath))
	return cmd
}

func newTeamJoinCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "join USER TEAM",
		Short: "Set your name and team; new tasks are stamped with your name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.ctrl.JoinTeam(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome %s! You've joined team: %s\n", id.User, id.Team)
			return nil
		},
	}
}

func newTeamLeaveCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave the current team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			if !e.ctrl.State().Identity.Joined() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not currently in a team")
				return nil
			}
			left, err := e.ctrl.LeaveTeam(cmd.Context(), confirmer(cmd, yes))
			if err != nil {
				return err
			}
			if left {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "You have left the team.")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Still in the team")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newTeamShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current user and team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			id := e.ctrl.State().Identity
			if !id.Joined() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not currently in a team")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current User: %s\nTeam: %s\n", id.User, id.Team)
			return nil
		},
	}
}
