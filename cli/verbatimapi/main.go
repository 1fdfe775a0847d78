package main

import (
	"os"

	servecmder "github.com/grouptheoryco/verbatim/cmd/verbatim/serve"
)

func main() {
	cmd := servecmder.NewServeCmd()
	cmd.Use = "verbatimapi"
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .verbatim/ config directory")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
