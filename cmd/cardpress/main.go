// Command cardpress serves the greeting card builder and renders print proofs.
//
// Usage:
//
//	cardpress [serve] [-root <dir>]
//	cardpress proof -theme <id> -font <id> -message <text> [-signature <text>] [-footer <text>] -out <file.pdf>
//	cardpress hash-password <password>
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/zeptools/gw-cardpress/sec"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}
	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "proof":
		err = runProof(args)
	case "hash-password":
		err = runHashPassword(args, os.Stdout)
	case "help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `cardpress - greeting card builder

Commands:
  serve   run the web service, job scheduler and admin socket (default)
  proof   render one card to a PDF file without a database
  hash-password
          print a bcrypt hash for admin_password_hash in .web-session.json

Run "cardpress <command> -h" for flags.
`)
}

func runHashPassword(args []string, out io.Writer) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("usage: cardpress hash-password <password>")
	}
	hash, err := sec.HashPassword(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
