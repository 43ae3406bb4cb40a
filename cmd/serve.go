package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagenote/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notebook over a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nb, err := openNotebook()
		if err != nil {
			return err
		}
		defer nb.Close()

		return server.New(nb, log).Run(cmd.Context(), cfg.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
}
