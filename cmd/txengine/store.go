package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"txengine/core"
)

func storeCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "store", Short: "inspect the substate store"}
	cmd.AddCommand(storeInspectCmd())
	return cmd
}

func storeInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <key-prefix>",
		Short: "list every stored key under a namespace prefix and its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeDir, _ := cmd.Flags().GetString("store")
			store, err := core.OpenFileSubstateStore(storeDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range store.KeysOf([]byte(args[0])) {
				val, ok, err := store.Get([]byte(key))
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", key, hex.EncodeToString(val))
			}
			return nil
		},
	}
}
