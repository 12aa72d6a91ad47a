// ABOUTME: CLI commands for the nutrition advisor chat.
// ABOUTME: Messages carry the profile and today's meals; the exchange is saved locally.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatHistoryLimit int

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the nutrition advisor",
	Long: `Ask the nutrition advisor a question. Your profile and today's meals are
sent along so the answer can take them into account.

EXAMPLES:

  kcal chat "What should I eat for dinner?"
  kcal chat history          # Show the saved conversation
  kcal chat context          # Show what is sent with each message`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := trk.SendChat(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return remoteError("chat failed", err)
		}
		if reply == nil {
			fmt.Println("Nothing to send.")
			return nil
		}
		fmt.Println(reply.Text)
		return nil
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the saved advisor conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := trk.ChatHistory(chatHistoryLimit)
		if err != nil {
			return fmt.Errorf("failed to load chat history: %w", err)
		}
		if len(messages) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}

		faint := color.New(color.Faint)
		you := color.New(color.FgCyan, color.Bold)
		advisor := color.New(color.FgGreen, color.Bold)
		for _, m := range messages {
			who := advisor.Sprint("Advisor")
			if m.IsUser {
				who = you.Sprint("You")
			}
			fmt.Printf("%s %s: %s\n", faint.Sprint(m.Timestamp.Format("2006-01-02 15:04")), who, m.Text)
		}
		return nil
	},
}

var chatContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show the data block sent with chat messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		block, err := trk.ChatContext()
		if err != nil {
			return fmt.Errorf("failed to build chat context: %w", err)
		}
		fmt.Println(block)
		return nil
	},
}

func init() {
	chatHistoryCmd.Flags().IntVarP(&chatHistoryLimit, "limit", "n", 20, "max number of messages")
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatContextCmd)
	rootCmd.AddCommand(chatCmd)
}
