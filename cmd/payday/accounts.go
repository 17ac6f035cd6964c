package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-payday-must-flow/internal/cli"
	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/service"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List and edit accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return listAccounts(ctx, store, cmd.OutOrStdout())
			})
		},
	}

	// Subcommands
	cmd.AddCommand(accountsSetBalanceCmd())
	cmd.AddCommand(accountsFundCmd())
	cmd.AddCommand(accountsDeleteCmd())

	return cmd
}

func accountsSetBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-balance <account> <amount>",
		Short: "Set an account's current balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[1])
			if err != nil {
				return err
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				return editAccount(ctx, store, args[0], func(a *model.Account) { a.CurrentBalance = amount })
			})
		},
	}
}

func accountsFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund <account> <from-account>",
		Short: "Record which account feeds this one",
		Long: `Set the account money is moved from when this account needs topping up.
Chains are allowed (savings funded from checking funded from a joint
account) but cycles are rejected. Use --clear to remove the link.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearLink, _ := cmd.Flags().GetBool("clear")
			if !clearLink && len(args) != 2 {
				return fmt.Errorf("need a from-account or --clear")
			}
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				from := ""
				if !clearLink {
					snap, err := store.LoadSnapshot(ctx)
					if err != nil {
						return err
					}
					src, err := findAccount(snap, args[1])
					if err != nil {
						return err
					}
					from = src.ID
				}
				return editAccount(ctx, store, args[0], func(a *model.Account) { a.FundedFromID = from })
			})
		},
	}

	cmd.Flags().Bool("clear", false, "Remove the funding link")

	return cmd
}

func accountsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd, func(ctx context.Context, store service.Storage) error {
				snap, err := store.LoadSnapshot(ctx)
				if err != nil {
					return err
				}
				a, err := findAccount(snap, args[0])
				if err != nil {
					return err
				}
				if err := store.DeleteAccount(ctx, a.ID); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+a.Name))
				return nil
			})
		},
	}
}

func editAccount(ctx context.Context, store service.Storage, ref string, edit func(*model.Account)) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	a, err := findAccount(snap, ref)
	if err != nil {
		return err
	}
	edit(&a)
	if err := store.SaveAccount(ctx, &a); err != nil {
		return err
	}
	slog.Info("Account updated", "account", a.Name, "balance", a.CurrentBalance.String())
	return nil
}

func listAccounts(ctx context.Context, store service.Storage, w io.Writer) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	accounts := model.ActiveAccounts(snap.Accounts)
	if len(accounts) == 0 {
		writeLine(w, cli.FormatInfo("No accounts yet. Run 'payday import' first."))
		return nil
	}

	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{
			a.ID,
			a.Name,
			string(a.Kind),
			cli.FormatMoney(a.CurrentBalance),
			accountName(snap, a.FundedFromID),
			accountName(snap, a.LinkedAccountID),
		})
	}
	writeLine(w, cli.RenderTable([]string{"ID", "Account", "Type", "Balance", "Funded from", "Backed by"}, rows))
	return nil
}
