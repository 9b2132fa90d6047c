package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"txengine/core"
	"txengine/driver"
)

func submitCmd() *cobra.Command {
	var signerStrs []string
	cmd := &cobra.Command{
		Use:   "submit <manifest-file>",
		Short: "execute a manifest file as a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeDir, _ := cmd.Flags().GetString("store")

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			signers := make([]core.Address, 0, len(signerStrs))
			for _, s := range signerStrs {
				addr, err := core.ParseAddress(s)
				if err != nil {
					return fmt.Errorf("--signer %q: %w", s, err)
				}
				signers = append(signers, addr)
			}

			store, err := core.OpenFileSubstateStore(storeDir)
			if err != nil {
				return err
			}

			receipt := driver.Execute(string(src), signers, store)
			if receipt.Status == driver.StatusSuccess {
				if err := store.Flush(); err != nil {
					return err
				}
			}
			logrus.WithField("status", receipt.Status).Info("transaction submitted")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(receipt)
		},
	}
	cmd.Flags().StringArrayVar(&signerStrs, "signer", nil, "signer address (repeatable)")
	return cmd
}
