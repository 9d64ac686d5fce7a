package cmd

import (
	"fmt"

	"github.com/SscSPs/finance_dashboard/internal/dto"
	"github.com/spf13/cobra"
)

var claimOpts struct {
	email    string
	password string
}

// claimCmd assigns unowned rows to the signed-in user.
var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Assign transactions without an owner to your account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.signIn(ctx, claimOpts.email, claimOpts.password)
		if err != nil {
			return err
		}
		defer a.signOut(ctx, sess)

		result, err := a.services.Reconciliation.ClaimUnowned(ctx, sess)
		if err != nil {
			return fmt.Errorf("claim failed: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), dto.ToClaimResponse(result))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Claimed %d transaction(s) for %s\n", result.Claimed, sess.OwnerIdentity)
		return nil
	},
}

func init() {
	addCredentialFlags(claimCmd, &claimOpts.email, &claimOpts.password)
}
