package main

import (
	"os"

	versocmder "github.com/papercomputeco/verso/cmd/verso"
)

func main() {
	cmd := versocmder.NewVersoCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
