// Example: print the entities of a database, reflected from the catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	pg "github.com/zeeql/pgadaptor"
)

func main() {
	dsn := flag.String("dsn", os.Getenv("PGADAPTOR_TEST_DSN"), "connect string, a URL or keyword/value pairs")
	tables := flag.String("tables", "", "comma separated table names, all tables if empty")
	tagOnly := flag.Bool("tag", false, "only print the schema fingerprint")
	if !flag.Parsed() {
		flag.Parse()
	}
	if *dsn == "" {
		log.Fatal("no connect string, pass -dsn or set PGADAPTOR_TEST_DSN")
	}

	ctx := context.Background()
	adaptor := pg.NewAdaptor(*dsn, pg.ChannelOptions{})

	if *tagOnly {
		tag, err := adaptor.FetchModelTag(ctx)
		if err != nil {
			log.Fatalf("failed to fetch model tag, err: %v", err)
		}
		fmt.Println(tag)
		return
	}

	ch, err := adaptor.OpenChannel(ctx)
	if err != nil {
		log.Fatalf("failed to connect. %v, err: %v", adaptor, err)
	}
	defer adaptor.ReleaseChannel(ch)

	mf := pg.NewModelFetch(ch)
	var model *pg.Model
	if names := tableNames(*tables); len(names) == 0 {
		model, err = mf.FetchModel(ctx)
	} else {
		model, err = mf.DescribeModelWithTableNames(ctx, names, true)
	}
	if err != nil {
		log.Fatalf("failed to describe model, err: %v", err)
	}

	fmt.Printf("model %v\n", model.Tag)
	for _, entity := range model.Entities {
		fmt.Printf("%v (table %v, primary key %v)\n", entity.Name, entity.Table, entity.PrimaryKeyAttributeNames)
		for _, attr := range entity.Attributes {
			flags := ""
			if attr.AllowsNull {
				flags += " NULL"
			}
			if attr.IsAutoIncrement {
				flags += " AUTOINCREMENT"
			}
			fmt.Printf("  %-24v %-12v %v%v\n", attr.Name, attr.ExternalType, attr.ValueType, flags)
		}
		for _, rel := range entity.Relationships {
			fmt.Printf("  %v (on delete %v)\n", rel, rel.DeleteRule)
		}
	}
}

// tableNames splits a comma separated -tables value, dropping blanks.
func tableNames(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
