package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/akolanti/delphi/internal/adapter/utils"
	"github.com/akolanti/delphi/internal/rag/conversation"
)

var (
	askCollection string
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question against a collection",
	Long: `Runs one conversation turn in a throw-away session bound to the collection
and prints the answer followed by its sources. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askCollection, "collection", "c", "", "collection to search")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	_ = askCmd.MarkFlagRequired("collection")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}
	if _, err := a.Collections.Get(cmd.Context(), askCollection); err != nil {
		return err
	}

	session := conversation.NewSession(utils.GetNewUUID(), a.Settings.AdminUser, time.Now()).Bind(askCollection)
	answer, _, err := a.Engine.Ask(cmd.Context(), args[0], session)
	if err != nil {
		return err
	}
	return printAnswer(cmd, answer)
}

func printAnswer(cmd *cobra.Command, answer conversation.Answer) error {
	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, s := range answer.Sources {
		cmd.Printf("  %s p.%d (%.2f)\n", s.Source, s.Page, s.Score)
	}
	return nil
}
