package main

import (
	"os"

	"github.com/tebello-m/tenderledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
