package main

import (
	"github.com/spf13/cobra"

	"github.com/akolanti/delphi/internal/auth"
	"github.com/akolanti/delphi/internal/config"
)

var credentialsFile string

var hashPasswordsCmd = &cobra.Command{
	Use:   "hash-passwords",
	Short: "Replace plaintext passwords in the credentials file with bcrypt hashes",
	Long: `Rewrites credentials.usernames.<user>.password for every user whose password
is not a bcrypt hash yet. Other fields and users are left untouched, so the
command can be run again after adding users.`,
	Args: cobra.NoArgs,
	RunE: runHashPasswords,
}

func init() {
	hashPasswordsCmd.Flags().StringVarP(&credentialsFile, "file", "f", config.CredentialsFile, "credentials YAML file")
	rootCmd.AddCommand(hashPasswordsCmd)
}

func runHashPasswords(cmd *cobra.Command, _ []string) error {
	hashed, err := auth.HashPasswords(credentialsFile)
	if err != nil {
		return err
	}
	if len(hashed) == 0 {
		cmd.Println("All passwords are already hashed.")
		return nil
	}
	for _, user := range hashed {
		cmd.Printf("hashed password of %s\n", user)
	}
	return nil
}
