package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/render"
	"github.com/zeptools/gw-cardpress/conf"
)

func runProof(args []string) error {
	fs := flag.NewFlagSet("proof", flag.ExitOnError)
	root := fs.String("root", ".", "app root holding config/ and public/fonts/")
	sample := sampleContent()
	var content compose.CardContent
	fs.StringVar(&content.ThemeKey, "theme", "", "design id, e.g. gentle_1 (default theme when empty)")
	fs.StringVar(&content.FontChoice, "font", "", "font choice id, e.g. font-vibes")
	fs.StringVar(&content.Message, "message", sample.Message, "card message")
	fs.StringVar(&content.Signature, "signature", sample.Signature, "signature, empty to omit")
	fs.StringVar(&content.FooterLabel, "footer", sample.FooterLabel, "footer label, empty to omit")
	ticket := fs.String("ticket", "", "job ticket printed as a barcode, e.g. ROS-1234")
	out := fs.String("out", "proof.pdf", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	appRoot, err := filepath.Abs(*root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	c := &conf.Core[string]{}
	if err = c.ToolInit(appRoot, ctx); err != nil {
		return err
	}
	if err = c.PrepareCards(); err != nil {
		return err
	}
	n, err := writeProofWith(ctx, c.Cards.Renderer, content, render.Options{JobTicket: *ticket, Title: "Proof"}, *out)
	if err != nil {
		return err
	}
	log.Printf("[INFO] wrote %s (%d bytes)", *out, n)
	return nil
}

func writeProof(ctx context.Context, r *render.Renderer, content compose.CardContent, out string) (int, error) {
	return writeProofWith(ctx, r, content, render.Options{Title: "Proof"}, out)
}

func writeProofWith(ctx context.Context, r *render.Renderer, content compose.CardContent, opts render.Options, out string) (int, error) {
	pdf, err := r.Render(ctx, content, opts)
	if err != nil {
		return 0, err
	}
	if err = os.WriteFile(out, pdf, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", out, err)
	}
	return len(pdf), nil
}
