package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/orders"
	"github.com/zeptools/gw-cardpress/shops"
	"github.com/zeptools/gw-cardpress/uds"
)

var errUsage = errors.New("wrong arguments")

func (a *app) commands() uds.CommandStore {
	cmds := uds.CommandStore{}
	cmds.Add("themes", uds.CmdHnd{Desc: "list card designs", Fn: a.cmdThemes})
	cmds.Add("fonts", uds.CmdHnd{Desc: "list font choices and load state", Fn: a.cmdFonts})
	cmds.Add("order", uds.CmdHnd{Desc: "show an order", Usage: "<shortId>", Fn: a.cmdOrder})
	cmds.Add("resend", uds.CmdHnd{Desc: "render and mail an order again", Usage: "<shortId>", Fn: a.cmdResend})
	cmds.Add("seed", uds.CmdHnd{Desc: "create the " + shops.DemoSlug + " demo shop", Fn: a.cmdSeed})
	cmds.Add("proof", uds.CmdHnd{Desc: "render a sample card to a file", Usage: "<themeKey> <fontId> <out.pdf>", Fn: a.cmdProof})
	return cmds
}

func (a *app) cmdThemes(_ context.Context, _ []string, w io.Writer) error {
	reg := a.core.Cards.Themes
	for _, cat := range reg.Categories() {
		fmt.Fprintf(w, "%-10s %s\n", cat.Name, strings.Join(cat.IDs, " "))
	}
	fmt.Fprintf(w, "default: %s\n", reg.DefaultID())
	return nil
}

func (a *app) cmdFonts(_ context.Context, _ []string, w io.Writer) error {
	fonts := a.core.Cards.Fonts
	for _, c := range typefaces.Choices() {
		fmt.Fprintf(w, "%-14s %-12s %s\n", c.ID, c.Label, fonts.Resolve(c.ID).Family)
	}
	for _, err := range fonts.Failures() {
		fmt.Fprintf(w, "failed: %v\n", err)
	}
	return nil
}

func (a *app) cmdOrder(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	o, err := a.orders.Orders.FindByShortID(ctx, strings.ToUpper(args[0]))
	if err != nil {
		return err
	}
	printOrder(w, o)
	return nil
}

func (a *app) cmdResend(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	o, err := a.orders.RedeliverShortID(ctx, strings.ToUpper(args[0]))
	if o != nil {
		printOrder(w, o)
	}
	return err
}

func printOrder(w io.Writer, o *orders.Order) {
	fmt.Fprintf(w, "%s id=%d shop=%d status=%s attempts=%d design=%s font=%s\n",
		o.ShortID, o.ID, o.ShopID, o.Status, o.Attempts, o.DesignID, o.FontID)
	fmt.Fprintf(w, "text: %s\n", o.CustomerText)
	if !o.CustomerSign.IsNil() {
		fmt.Fprintf(w, "signature: %s\n", o.CustomerSign.ForceValue())
	}
}

func (a *app) cmdSeed(ctx context.Context, _ []string, w io.Writer) error {
	shop, created, err := shops.Seed(ctx, a.shops)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(w, "created shop %s (id %d)\n", shop.Slug, shop.ID)
	} else {
		fmt.Fprintf(w, "shop %s already exists (id %d)\n", shop.Slug, shop.ID)
	}
	return nil
}

func (a *app) cmdProof(ctx context.Context, args []string, w io.Writer) error {
	if len(args) != 3 {
		return errUsage
	}
	content := sampleContent()
	content.ThemeKey, content.FontChoice = args[0], args[1]
	n, err := writeProof(ctx, a.core.Cards.Renderer, content, args[2])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s (%d bytes)\n", args[2], n)
	return nil
}

func sampleContent() compose.CardContent {
	return compose.CardContent{
		Message:     "З днем народження! Нехай кожен день буде сповнений радості, тепла та квітів.",
		Signature:   "З любов'ю, Оля",
		FooterLabel: "Rose Studio",
	}
}
