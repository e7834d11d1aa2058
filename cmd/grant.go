package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant or revoke a user's access to a question set",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requiredString(cmd, "user")
		if err != nil {
			return err
		}
		setID, err := requiredString(cmd, "set")
		if err != nil {
			return err
		}
		e, done, err := setup(cmd)
		if err != nil {
			return err
		}
		defer done()
		ctx := commandContext(cmd)
		w := cmd.OutOrStdout()

		if _, err := e.st.GetSet(ctx, setID); err != nil {
			return fmt.Errorf("question set %s: %w", setID, err)
		}
		if revoke, _ := cmd.Flags().GetBool("revoke"); revoke {
			if err := e.svc.Evaluator().Revoke(ctx, user, setID); err != nil {
				return err
			}
			fmt.Fprintf(w, "Revoked %s from %s\n", setID, user)
			return nil
		}
		created, err := e.svc.Evaluator().GrantManual(ctx, user, setID)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(w, "%s already had access to %s\n", user, setID)
			return nil
		}
		fmt.Fprintf(w, "Granted %s to %s\n", setID, user)
		return nil
	},
}

func init() {
	grantCmd.Flags().String("user", "", "User id")
	grantCmd.Flags().String("set", "", "Question set id")
	grantCmd.Flags().Bool("revoke", false, "Remove the grant instead")
}
