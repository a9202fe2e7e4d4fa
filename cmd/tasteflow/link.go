package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ceezaa/tasteflow/internal/cli"
	"github.com/ceezaa/tasteflow/internal/model"
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Connect bank accounts through Plaid Link",
	}

	cmd.AddCommand(linkTokenCmd())
	cmd.AddCommand(linkExchangeCmd())
	cmd.AddCommand(linkSearchCmd())

	return cmd
}

func linkTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Create a Link token to start the connection flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := requireUserID()
			if err != nil {
				return err
			}

			client, err := initPlaidClient()
			if err != nil {
				return err
			}

			token, err := client.CreateLinkToken(cmd.Context(), "tasteflow-"+userID)
			if err != nil {
				return fmt.Errorf("failed to create link token: %w", err)
			}

			fmt.Println(cli.RenderBox("Link Token", token))
			fmt.Println(cli.FormatInfo("Open Plaid Link with this token, then run 'tasteflow link exchange <public-token>'."))
			return nil
		},
	}
}

func linkExchangeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exchange <public-token>",
		Short: "Exchange a Link public token and save the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			userID, err := requireUserID()
			if err != nil {
				return err
			}

			client, err := initPlaidClient()
			if err != nil {
				return err
			}

			accessToken, itemID, err := client.ExchangePublicToken(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to exchange public token: %w", err)
			}

			institution, _ := cmd.Flags().GetString("institution")

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.LinkedAccount{
				ID:              uuid.NewString(),
				UserID:          userID,
				ItemID:          itemID,
				AccessToken:     accessToken,
				InstitutionName: institution,
			}
			if err := store.SaveLinkedAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to save linked account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Linked account %s. Run 'tasteflow sync' to pull transactions.", account.ID)))
			return nil
		},
	}

	cmd.Flags().String("institution", "", "institution display name for the linked account")

	return cmd
}

func linkSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search supported financial institutions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initPlaidClient()
			if err != nil {
				return err
			}

			limit, _ := cmd.Flags().GetInt("limit")
			institutions, err := client.SearchInstitutions(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to search institutions: %w", err)
			}

			if len(institutions) == 0 {
				fmt.Println(cli.FormatWarning("No institutions matched."))
				return nil
			}

			for _, inst := range institutions {
				marker := " "
				if inst.OAuth {
					marker = "oauth"
				}
				fmt.Printf("%-40s %-12s %s\n", inst.Name, inst.ID, marker)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "maximum institutions to list")

	return cmd
}
