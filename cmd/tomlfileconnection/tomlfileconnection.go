// Example: How to connect to the server with the toml file configuration
// Prerequisite: a connections.toml with permissions 0600 in $PGADAPTOR_HOME
// (default ~/.pgadaptor), for example:
//
//	[default]
//	host = "localhost"
//	database = "contacts"
//	user = "admin"
//	password = "secret"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	pg "github.com/zeeql/pgadaptor"
)

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	cfg, err := pg.LoadConnectionConfig()
	if err != nil {
		log.Fatalf("failed to create Config, err: %v", err)
	}
	adaptor, err := pg.NewAdaptorWithConfig(cfg)
	if err != nil {
		log.Fatalf("failed to create adaptor from Config, err: %v", err)
	}

	ctx := context.Background()
	ch, err := adaptor.OpenChannel(ctx)
	if err != nil {
		log.Fatalf("failed to connect. %v, err: %v", adaptor, err)
	}
	defer adaptor.ReleaseChannel(ch)

	tables, err := ch.DescribeTableNames(ctx)
	if err != nil {
		log.Fatalf("failed to list tables, err: %v", err)
	}
	fmt.Printf("Congrats! %v has %v tables: %v\n", adaptor, len(tables), tables)
}
