package conf

import (
	"log"

	"github.com/zeptools/gw-cardpress/apis/cloudinary"
	"github.com/zeptools/gw-cardpress/apis/mailer"
	"github.com/zeptools/gw-cardpress/orders"
)

// APIs holds the outbound api clients
type APIs struct {
	Mailer     orders.Mailer
	Cloudinary *cloudinary.Client // nil when .cloudinary.json is absent
}

// PrepareMailer reads .mailer.json
// Prerequisite: BackendHttpClient
func (c *Core[B]) PrepareMailer() error {
	if c.DebugOpts.DryRunMail {
		log.Printf("[WARN][MAILER] dry run: mail is logged, not sent")
		c.APIs.Mailer = mailer.DryRun{}
		return nil
	}
	var mc mailer.Conf
	if err := c.loadJSON(".mailer.json", &mc); err != nil {
		return err
	}
	c.APIs.Mailer = mailer.NewClient(c.BackendHttpClient, &mc)
	return nil
}

// PrepareCloudinary reads .cloudinary.json when present; logo uploads stay disabled otherwise.
func (c *Core[B]) PrepareCloudinary() error {
	var cc cloudinary.Conf
	found, err := c.loadOptionalJSON(".cloudinary.json", &cc)
	if err != nil {
		return err
	}
	if !found {
		log.Printf("[WARN][CLOUDINARY] no .cloudinary.json: logo uploads disabled")
		return nil
	}
	c.APIs.Cloudinary = cloudinary.NewClient(c.BackendHttpClient, &cc)
	return nil
}
