package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/zeptools/gw-cardpress/conf"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	root := fs.String("root", ".", "app root holding config/, templates/ and public/fonts/")
	if err := fs.Parse(args); err != nil {
		return err
	}
	appRoot, err := filepath.Abs(*root)
	if err != nil {
		return err
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	c := &conf.Core[string]{}
	if err = c.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
		return err
	}
	defer c.ResourceCleanUp()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"kv database", c.PrepareKVDatabase},
		{"sql databases", c.PrepareSQLDatabases},
		{"web sessions", c.PrepareWebSessions},
		{"html templates", c.PrepareHTMLTemplateStore},
		{"cards", c.PrepareCards},
		{"mailer", c.PrepareMailer},
		{"cloudinary", c.PrepareCloudinary},
		{"throttle", c.PrepareThrottleBucketStore},
	}
	for _, s := range steps {
		if err = s.fn(); err != nil {
			log.Printf("[ERROR][CORE] prepare %s failed", s.name)
			return err
		}
	}
	c.PrepareJobScheduler()

	a := newApp(c)
	a.orders.RegisterJobs(c.JobScheduler)
	c.PrepareWebService(a.routes())
	c.PrepareUDSService(a.commands())

	if err = c.StartServices(); err != nil {
		c.StopServices()
		return err
	}
	log.Printf("[INFO] %s is up", c.AppName)
	err = c.WaitServicesDone()
	c.StopServices()
	return err
}
