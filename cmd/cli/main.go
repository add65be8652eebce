package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/catalogctl/internal/buildinfo"
	"github.com/dmitrijs2005/catalogctl/internal/client/cli"
	"github.com/dmitrijs2005/catalogctl/internal/client/config"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/flagx"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// -link carries the invite / recovery link received by e-mail.
	link, err := models.ParseLink(flagx.StringFlag(os.Args[1:], "link"))
	if err != nil {
		log.Fatalf("link: %v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx, link)

}
