package command

import (
	"fmt"
	"strings"

	"storyhub/cmd/cli/dto"

	"github.com/spf13/cobra"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Write stories (author or admin)",
}

var createStoryCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft story",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateStoryRequest
		req.Title, _ = cmd.Flags().GetString("title")
		req.Description, _ = cmd.Flags().GetString("description")
		req.Tags, _ = cmd.Flags().GetStringSlice("tags")

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		story, err := httpClient.CreateStory(&req)
		if err != nil {
			return fmt.Errorf("failed to create story: %w", err)
		}
		fmt.Println(success(fmt.Sprintf("✓ Story %d created as %s.", story.ID, story.Status)))
		return nil
	},
}

var addPageCmd = &cobra.Command{
	Use:   "add-page [story_id]",
	Short: "Add a page to a story",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storyID, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		var req dto.CreatePageRequest
		req.Text, _ = cmd.Flags().GetString("text")
		req.EndingLabel, _ = cmd.Flags().GetString("ending")
		req.IsEnding = req.EndingLabel != ""

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		page, err := httpClient.AddPage(storyID, &req)
		if err != nil {
			return fmt.Errorf("failed to add page: %w", err)
		}
		fmt.Println(success(fmt.Sprintf("✓ Page %d added.", page.ID)))
		return nil
	},
}

var addChoiceCmd = &cobra.Command{
	Use:   "add-choice [page_id]",
	Short: "Add a choice leading from one page to another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, err := parseID(args[0], "page")
		if err != nil {
			return err
		}
		var req dto.CreateChoiceRequest
		req.Text, _ = cmd.Flags().GetString("text")
		req.NextPageID, _ = cmd.Flags().GetInt64("next")

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		choice, err := httpClient.AddChoice(pageID, &req)
		if err != nil {
			return fmt.Errorf("failed to add choice: %w", err)
		}
		fmt.Println(success(fmt.Sprintf("✓ Choice %d added (%d -> %d).", choice.ID, choice.PageID, choice.NextPageID)))
		return nil
	},
}

var setStartCmd = &cobra.Command{
	Use:   "set-start [story_id] [page_id]",
	Short: "Set the page a story starts on",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		storyID, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		pageID, err := parseID(args[1], "page")
		if err != nil {
			return err
		}

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		if _, err := httpClient.SetStartPage(storyID, pageID); err != nil {
			return err
		}
		fmt.Println(success("✓ Start page set."))
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [story_id]",
	Short: "Publish a story, or move it back to draft with --draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storyID, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		status := "published"
		if draft, _ := cmd.Flags().GetBool("draft"); draft {
			status = "draft"
		}

		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		story, err := httpClient.UpdateStory(storyID, &dto.UpdateStoryRequest{Status: &status})
		if err != nil {
			return err
		}
		fmt.Println(success(fmt.Sprintf("✓ %q is now %s.", story.Title, story.Status)))
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [story_id]",
	Short: "Show a story's pages and choices with graph diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storyID, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		httpClient, err := newClient(true)
		if err != nil {
			return err
		}
		tree, err := httpClient.Tree(storyID)
		if err != nil {
			return err
		}

		var start int64
		if tree.Story.StartPageID != nil {
			start = *tree.Story.StartPageID
		}

		fmt.Printf("%s (%s)\n\n", heading(tree.Story.Title), tree.Story.Status)
		for _, p := range tree.Pages {
			marker := "  "
			if p.ID == start {
				marker = "> "
			}
			line := fmt.Sprintf("%s[%d] %s", marker, p.ID, excerpt(p.Text, 60))
			if p.IsEnding {
				label := ""
				if p.EndingLabel != nil {
					label = *p.EndingLabel
				}
				line += muted(" (ending: " + label + ")")
			}
			fmt.Println(line)
			for _, c := range p.Choices {
				fmt.Printf("      - %s -> [%d]\n", c.Text, c.NextPageID)
			}
		}

		printIDs("Unreachable pages", tree.UnreachablePageIDs)
		printIDs("Dead ends", tree.DeadEndPageIDs)
		return nil
	},
}

func excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > n {
		return string(r[:n]) + "..."
	}
	return text
}

func printIDs(label string, ids []int64) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	fmt.Printf("\n%s: %s\n", label, strings.Join(parts, ", "))
}

func init() {
	authorCmd.AddCommand(createStoryCmd, addPageCmd, addChoiceCmd, setStartCmd, publishCmd, treeCmd)

	createStoryCmd.Flags().String("title", "", "Story title")
	createStoryCmd.Flags().String("description", "", "Story description")
	createStoryCmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	_ = createStoryCmd.MarkFlagRequired("title")

	addPageCmd.Flags().String("text", "", "Page text")
	addPageCmd.Flags().String("ending", "", "Make this page an ending with the given label")
	_ = addPageCmd.MarkFlagRequired("text")

	addChoiceCmd.Flags().String("text", "", "Choice text")
	addChoiceCmd.Flags().Int64("next", 0, "ID of the page the choice leads to")
	_ = addChoiceCmd.MarkFlagRequired("text")
	_ = addChoiceCmd.MarkFlagRequired("next")

	publishCmd.Flags().Bool("draft", false, "Move the story back to draft")
}
