package main

import (
	"time"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"collection"},
	Short:   "Manage document collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collection names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		names, err := a.Collections.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			cmd.Println("No collections.")
			return nil
		}
		for _, name := range names {
			cmd.Println(name)
		}
		return nil
	},
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty collection owned by the admin user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		info, err := a.Collections.Create(cmd.Context(), args[0], a.Settings.AdminUser, time.Now())
		if err != nil {
			return err
		}
		cmd.Printf("created %s (%s, %d dimensions)\n", info.Name, info.EmbeddingModel, info.EmbeddingDimension)
		return nil
	},
}

var collectionsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection, its vectors and its cached documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Collections.Delete(cmd.Context(), args[0], adminIdentity(a)); err != nil {
			return err
		}
		cmd.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	collectionsCmd.AddCommand(collectionsListCmd, collectionsCreateCmd, collectionsDeleteCmd)
	rootCmd.AddCommand(collectionsCmd)
}
