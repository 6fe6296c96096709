package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/penwyp/go-tally/internal/core/tally"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a topic",
		Long:  `Adds a topic with the next palette color. Words are joined with spaces; a blank name adds nothing.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			topic, ok := store.AddTopic(strings.Join(args, " "))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing added: the topic name is blank.")
				return nil
			}
			if err := saved(store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added topic %q (#%d, %s)\n", topic.Name, len(store.Topics()), topic.Color)
			return nil
		},
	}
}

func newIncCmd(a *app) *cobra.Command {
	var times int

	cmd := &cobra.Command{
		Use:   "inc TOPIC",
		Short: "Count an event for a topic",
		Long:  `Counts one event for the topic with the given id or name. Names match exactly first, then ignoring case.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				return fmt.Errorf("--times must be at least 1")
			}

			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			topic, ok := store.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown topic %q", args[0])
			}

			for i := 0; i < times; i++ {
				if err := store.Increment(topic.ID); err != nil {
					if errors.Is(err, tally.ErrTimelineFull) {
						return fmt.Errorf("maximum of %d events reached after %d increments; export or clear counts to continue: %w",
							store.Capacity(), i, err)
					}
					return err
				}
				if err := saved(store); err != nil {
					return err
				}
			}

			topic, _ = store.Topic(topic.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", topic.Name, topic.Count)
			return nil
		},
	}

	cmd.Flags().IntVarP(&times, "times", "n", 1, "Number of events to count")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Set every count to zero and empty the event log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd, "Clear all counts and events? Topics are kept. (y/N): ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Clear cancelled.")
				return nil
			}

			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			store.ClearCounts()
			if err := saved(store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Counts cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove all topics and events and restore Pass and Fail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !confirm(cmd, "Reset topics? This removes every topic and event. (y/N): ") {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
				return nil
			}

			store, kv, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			store.ResetTopics()
			if err := saved(store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Topics reset.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// saved turns a failed save into the command's error. The board only logs
// save failures; for one-shot commands the save is the whole result.
func saved(store *tally.Store) error {
	if err := store.LastSaveError(); err != nil {
		return fmt.Errorf("changes were not saved: %w", err)
	}
	return nil
}

// confirm asks a y/N question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprint(cmd.OutOrStdout(), question)
	var response string
	_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
	return response == "y" || response == "Y"
}
