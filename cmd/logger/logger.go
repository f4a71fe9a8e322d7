package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	pg "github.com/zeeql/pgadaptor"
)

// Shows how the adaptor logger filters levels, masks connect string
// credentials and adds context fields.
func main() {
	var out bytes.Buffer
	l := pg.CreateDefaultLogger()
	l.SetOutput(&out)
	if err := l.SetLogLevel("info"); err != nil {
		log.Fatal(err)
	}
	if err := pg.SetLogger(l); err != nil {
		log.Fatalf("failed to set logger: %v", err)
	}
	pg.RegisterLogContextHook("application", func(context.Context) string {
		return "describemodel"
	})

	ctx := context.WithValue(context.Background(), pg.SessionIDKey, "4711")
	lg := pg.GetLogger()
	lg.WithContext(ctx).Infof("opening channel with %v", "host=db user=OGo password=hunter2")
	lg.Infof("opening channel with %v", "postgres://OGo:hunter2@db/OGo")
	lg.Debug("hidden at info level")
	_ = lg.SetLogLevel("debug")
	lg.Debug("shown at debug level")

	got := out.String()
	checks := []struct {
		name string
		ok   bool
	}{
		{"password masked", !strings.Contains(got, "hunter2")},
		{"session id field", strings.Contains(got, "PGADAPTOR_SESSION_ID=4711")},
		{"context hook field", strings.Contains(got, "application=describemodel")},
		{"debug filtered", !strings.Contains(got, "hidden at info level")},
		{"debug after switch", strings.Contains(got, "shown at debug level")},
	}
	for _, c := range checks {
		fmt.Printf("%-20s %t\n", c.name, c.ok)
	}
}
