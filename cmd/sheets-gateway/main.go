package main

import (
	"context"
	"os"

	"github.com/mauzo/sheets-gateway/commands"
	"github.com/mauzo/sheets-gateway/log"
)

func main() {
	root := commands.NewRootCmd()

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
}
