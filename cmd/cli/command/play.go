package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"storyhub/cmd/cli/authentication"
	"storyhub/cmd/cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// player is the slice of the web API an interactive walk needs.
type player interface {
	StartPlay(storyID int64, resume, preview bool) (*dto.PlayState, error)
	Choose(storyID, choiceID int64, preview bool) (*dto.PlayState, error)
}

var playCmd = &cobra.Command{
	Use:   "play [story_id]",
	Short: "Play a story interactively",
	Long: `Play a story choice by choice. Your position is saved after every move, so
running the command again resumes where you stopped unless --restart is given.
Type the number of a choice, or q to quit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		storyID, err := parseID(args[0], "story")
		if err != nil {
			return err
		}
		restart, _ := cmd.Flags().GetBool("restart")
		preview, _ := cmd.Flags().GetBool("preview")

		httpClient, err := newClient(false)
		if err != nil {
			return err
		}
		key, err := authentication.SessionKey()
		if err != nil {
			return fmt.Errorf("failed to load play session key: %w", err)
		}
		httpClient.SetSessionKey(key)

		return runPlay(httpClient, os.Stdin, cmd.OutOrStdout(), storyID, restart, preview)
	},
}

var errQuit = errors.New("quit")

func runPlay(api player, in io.Reader, out io.Writer, storyID int64, restart, preview bool) error {
	state, err := api.StartPlay(storyID, !restart, preview)
	if err != nil {
		return err
	}

	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(out, state.StoryTitle)
	if state.Resumed {
		color.New(color.FgHiBlack).Fprintln(out, "(resuming your saved progress)")
	}
	if state.Preview {
		color.New(color.FgYellow).Fprintln(out, "(preview, this walk is not recorded)")
	}

	scanner := bufio.NewScanner(in)
	for {
		printPage(out, state)
		if state.IsEnding {
			return nil
		}
		if len(state.Page.Choices) == 0 {
			color.New(color.FgYellow).Fprintln(out, "This page has no way forward yet.")
			return nil
		}

		choice, err := readChoice(scanner, out, len(state.Page.Choices))
		if errors.Is(err, errQuit) {
			fmt.Fprintln(out, "Progress saved. Bye!")
			return nil
		}
		if err != nil {
			return err
		}

		next, err := api.Choose(storyID, state.Page.Choices[choice].ID, preview)
		if err != nil {
			return err
		}
		state = next
	}
}

func printPage(out io.Writer, state *dto.PlayState) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, state.Page.Text)
	fmt.Fprintln(out)

	if state.IsEnding {
		label := "The End"
		if state.EndingLabel != nil && *state.EndingLabel != "" {
			label = *state.EndingLabel
		}
		color.New(color.FgMagenta, color.Bold).Fprintf(out, "*** %s ***\n", label)
		if state.PlayID != nil {
			color.New(color.FgHiBlack).Fprintf(out, "Play #%d recorded after %d pages.\n", *state.PlayID, len(state.Path))
		}
		return
	}

	for i, c := range state.Page.Choices {
		color.New(color.FgGreen).Fprintf(out, "  %d) ", i+1)
		fmt.Fprintln(out, c.Text)
	}
}

// readChoice returns the zero-based index of the chosen option.
func readChoice(scanner *bufio.Scanner, out io.Writer, n int) (int, error) {
	for {
		fmt.Fprintf(out, "\nYour choice [1-%d, q]: ", n)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, errQuit
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "q") {
			return 0, errQuit
		}
		if k, err := strconv.Atoi(input); err == nil && k >= 1 && k <= n {
			return k - 1, nil
		}
		color.New(color.FgRed).Fprintf(out, "Please enter a number between 1 and %d.\n", n)
	}
}

func init() {
	playCmd.Flags().Bool("restart", false, "Discard saved progress and start from the first page")
	playCmd.Flags().Bool("preview", false, "Walk without recording a play (authors and admins)")
}
