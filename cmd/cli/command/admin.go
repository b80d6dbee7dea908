package command

import (
	"fmt"

	"storyhub/cmd/cli/dto"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation commands (admin)",
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List story reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		reports, err := httpClient.ListReports(status)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No reports.")
			return nil
		}

		for _, r := range reports {
			fmt.Printf("%s story %d, %s by %s [%s]\n",
				heading(fmt.Sprintf("#%d", r.ID)), r.StoryID, r.Reason, r.Reporter, r.Status)
			if r.Description != "" {
				fmt.Printf("    %s\n", r.Description)
			}
			fmt.Println(muted("    " + r.CreatedAt.Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review [report_id] [reviewing|resolved|dismissed]",
	Short: "Set a report's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "report")
		if err != nil {
			return err
		}
		notes, _ := cmd.Flags().GetString("notes")

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		report, err := httpClient.ReviewReport(id, &dto.ReviewReportRequest{Status: args[1], ModeratorNotes: notes})
		if err != nil {
			return err
		}
		fmt.Println(success(fmt.Sprintf("✓ Report %d is now %s.", report.ID, report.Status)))
		return nil
	},
}

func suspendCommand(use, short string, suspended bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [story_id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			httpClient, err := newClient(true)
			if err != nil {
				return err
			}
			story, err := httpClient.SetSuspended(id, suspended)
			if err != nil {
				return err
			}
			fmt.Println(success(fmt.Sprintf("✓ %q is now %s.", story.Title, story.Status)))
			return nil
		},
	}
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role [user_id] [reader|author|admin]",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		user, err := httpClient.ChangeRole(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(success(fmt.Sprintf("✓ %s is now %s.", user.Username, user.Role)))
		return nil
	},
}

func init() {
	adminCmd.AddCommand(
		reportsCmd,
		reviewCmd,
		suspendCommand("suspend", "Hide a published story from players", true),
		suspendCommand("unsuspend", "Publish a suspended story again", false),
		setRoleCmd,
	)

	reportsCmd.Flags().String("status", "", "Filter by status (pending, reviewing, resolved, dismissed)")
	reviewCmd.Flags().String("notes", "", "Moderator notes")
}
