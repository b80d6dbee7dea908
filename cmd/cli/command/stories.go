package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "Browse published stories",
}

var listStoriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List published stories",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		tags, _ := cmd.Flags().GetString("tags")

		httpClient, err := newClient(false)
		if err != nil {
			return err
		}
		result, err := httpClient.ListStories(search, tags)
		if err != nil {
			return fmt.Errorf("failed to list stories: %w", err)
		}

		if len(result.Stories) == 0 {
			fmt.Println("No stories found.")
			return nil
		}

		fmt.Printf("Found %d stories:\n\n", result.Total)
		for _, s := range result.Stories {
			fmt.Printf("%s %s\n", heading(fmt.Sprintf("[%d]", s.ID)), s.Title)
			if len(s.Tags) > 0 {
				fmt.Printf("    tags: %s\n", strings.Join(s.Tags, ", "))
			}
			fmt.Printf("    rating: %.1f (%d)\n", s.AverageRating, s.RatingCount)
		}
		return nil
	},
}

var showStoryCmd = &cobra.Command{
	Use:   "show [story_id]",
	Short: "Show one story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		httpClient, err := newClient(false)
		if err != nil {
			return err
		}
		story, err := httpClient.GetStory(id)
		if err != nil {
			return err
		}

		fmt.Println(heading(story.Title))
		fmt.Printf("Status: %s\n", story.Status)
		if story.Description != "" {
			fmt.Printf("\n%s\n\n", story.Description)
		}
		if len(story.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(story.Tags, ", "))
		}
		fmt.Printf("Rating: %.1f from %d ratings\n", story.AverageRating, story.RatingCount)
		if story.StartPageID == nil {
			fmt.Println(muted("This story has no start page yet."))
		}
		return nil
	},
}

var statsStoryCmd = &cobra.Command{
	Use:   "stats [story_id]",
	Short: "Show how often each ending was reached",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		httpClient, err := newClient(false)
		if err != nil {
			return err
		}
		stats, err := httpClient.StoryStats(id)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %d completed plays\n\n", heading(stats.Title), stats.TotalPlays)
		for _, e := range stats.EndingStats {
			label := e.EndingLabel
			if label == "" {
				label = fmt.Sprintf("page %d", e.EndingPageID)
			}
			fmt.Printf("  %-30s %5d  %5.1f%%\n", label, e.Count, e.Percentage)
		}
		return nil
	},
}

var rateStoryCmd = &cobra.Command{
	Use:   "rate [story_id] [1-5]",
	Short: "Rate a story",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil || rating < 1 || rating > 5 {
			return fmt.Errorf("rating must be a number from 1 to 5")
		}
		comment, _ := cmd.Flags().GetString("comment")

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		if err := httpClient.Rate(id, rating, comment); err != nil {
			return err
		}
		fmt.Println(success("✓ Rating saved."))
		return nil
	},
}

func parseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %q", label, raw)
	}
	return id, nil
}

func init() {
	storiesCmd.AddCommand(listStoriesCmd, showStoryCmd, statsStoryCmd, rateStoryCmd)

	listStoriesCmd.Flags().StringP("search", "s", "", "Search in title and description")
	listStoriesCmd.Flags().StringP("tags", "t", "", "Comma separated tags, all must match")
	rateStoryCmd.Flags().StringP("comment", "c", "", "Optional comment")
}
