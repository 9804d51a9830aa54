package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/midnightntwrk/ledger-go/blobid"
	"github.com/midnightntwrk/ledger-go/costmodel"
	"github.com/midnightntwrk/ledger-go/dust"
	"github.com/midnightntwrk/ledger-go/keystore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "cost-model":
		return cmdCostModel(args[1:], out, errOut)
	case "dust-key":
		return cmdDustKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "midnight-params: ledger parameter tooling")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  midnight-params cost-model init [--out <file>]")
	fmt.Fprintln(w, "  midnight-params cost-model show <file>")
	fmt.Fprintln(w, "  midnight-params cost-model cid <file>")
	fmt.Fprintln(w, "  midnight-params dust-key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  midnight-params dust-key derive (--seed-hex <64hex> | --name <name> [--purpose <p>] | --seed-file <path>)")
	fmt.Fprintln(w, "  midnight-params dust-key list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - cost-model init writes the canonical serialized initial cost model")
	fmt.Fprintln(w, "  - cost-model show decodes a serialized cost model and prints every coefficient")
	fmt.Fprintln(w, "  - cost-model cid prints the content ID of a serialized cost model")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars)")
	fmt.Fprintln(w, "  - seeds are stored under ~/.midnight/keys/<name> (0600 seed files)")
}

func cmdCostModel(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: midnight-params cost-model <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, show, cid")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdCostModelInit(args[1:], out, errOut)
	case "show":
		return cmdCostModelShow(args[1:], out, errOut)
	case "cid":
		return cmdCostModelCID(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown cost-model subcommand: %s\n", args[0])
		return 2
	}
}

func cmdCostModelInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cost-model init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var outPath string
	fs.StringVar(&outPath, "out", "", "Write serialized bytes to a file instead of stdout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: midnight-params cost-model init [--out <file>]")
		return 2
	}

	model := costmodel.InitialTransactionCostModel()
	raw, err := model.Encode()
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(raw)
		return 0
	}
	if err := os.WriteFile(outPath, raw, 0o644); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Fprintf(out, "wrote %d bytes to %s\n", len(raw), outPath)
	return 0
}

func cmdCostModelShow(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cost-model show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: midnight-params cost-model show <file>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read cost model: %v\n", err)
		return 1
	}
	model, err := costmodel.Decode(raw)
	if err != nil {
		fmt.Fprintf(errOut, "invalid cost model: %v\n", err)
		return 1
	}
	_, _ = io.WriteString(out, model.String())
	return 0
}

func cmdCostModelCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cost-model cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: midnight-params cost-model cid <file>")
		return 2
	}
	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read cost model: %v\n", err)
		return 1
	}
	// Validate before addressing so a CID never names malformed bytes.
	if _, err := costmodel.Decode(raw); err != nil {
		fmt.Fprintf(errOut, "invalid cost model: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, blobid.ForBytes(raw))
	return 0
}

func cmdDustKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: midnight-params dust-key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, derive, list")
		return 2
	}
	switch args[0] {
	case "init":
		return cmdDustKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdDustKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdDustKeyList(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown dust-key subcommand: %s\n", args[0])
		return 2
	}
}

func cmdDustKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("dust-key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool
	fs.StringVar(&name, "name", "", "Seed name (directory under ~/.midnight/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional seed as 64 hex chars (for reproducible setups)")
	fs.BoolVar(&force, "force", false, "Overwrite existing seed files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keystore.CheckName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	store, err := keystore.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keystore: %v\n", err)
		return 1
	}

	var seed dust.Seed
	if seedHex != "" {
		seed, err = keystore.ParseSeedHex(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		if _, err := rand.Read(seed[:]); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	pub, path, err := store.InitializeRootSeed(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write seed: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Dust-Public-Key: %s\n", pub)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdDustKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("dust-key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var seedHex string
	var name string
	var purpose string
	var seedFile string
	fs.StringVar(&seedHex, "seed-hex", "", "Seed as 64 hex chars")
	fs.StringVar(&name, "name", "", "Use a stored seed by name (from 'midnight-params dust-key init')")
	fs.StringVar(&purpose, "purpose", "", "When using --name, derive a purpose-specific seed")
	fs.StringVar(&seedFile, "seed-file", "", "Path to a hex seed file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if seedHex == "" && name == "" && seedFile == "" {
		fmt.Fprintln(errOut, "missing seed: use --seed-hex, --name, or --seed-file")
		return 2
	}
	store, err := keystore.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keystore: %v\n", err)
		return 1
	}
	seed, err := store.LoadSeed(seedHex, name, purpose, seedFile)
	if err != nil {
		fmt.Fprintf(errOut, "invalid seed: %v\n", err)
		return 2
	}

	sk := dust.DeriveSecretKey(seed)
	defer sk.Clear()
	pk, err := sk.PublicKey()
	if err != nil {
		fmt.Fprintf(errOut, "derive: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Dust-Public-Key: %s\n", hex.EncodeToString(pk[:]))
	return 0
}

func cmdDustKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("dust-key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	store, err := keystore.Open("")
	if err != nil {
		fmt.Fprintf(errOut, "keystore: %v\n", err)
		return 1
	}
	entries, err := store.List()
	if err != nil {
		fmt.Fprintf(errOut, "list seeds: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\n", e.Name)
		for _, p := range e.Purposes {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}
	return 0
}
