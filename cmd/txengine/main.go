// Command txengine is the CLI surface over the transaction driver,
// mirroring cmd/synnergy's rootCmd.AddCommand(...) tree shape.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	root := &cobra.Command{Use: "txengine", Short: "deterministic transaction execution engine"}
	root.PersistentFlags().String("store", "./data", "substate store directory")
	root.AddCommand(submitCmd())
	root.AddCommand(storeCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
