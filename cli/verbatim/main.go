package main

import (
	"os"

	verbatimcmder "github.com/grouptheoryco/verbatim/cmd/verbatim"
)

func main() {
	cmd := verbatimcmder.NewVerbatimCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
