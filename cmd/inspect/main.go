package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"amq/internal/quotient"
	"amq/internal/registry"
)

type cli struct {
	Dump bool   `help:"Print every slot of a quotient filter snapshot."`
	Path string `arg:"" help:"Snapshot file (.cf, .scf, .qf or .bf)."`
}

func main() {
	var params cli
	ctx := kong.Parse(&params, kong.Description("Print the parameters of a saved filter snapshot."))

	fmt.Printf("Inspecting snapshot: %s\n", params.Path)
	fmt.Println()

	f, err := registry.Load(params.Path)
	ctx.FatalIfErrorf(err, "failed to open snapshot")
	registry.Print(os.Stdout, registry.Describe(f))

	if params.Dump {
		qf, ok := f.(*quotient.Filter)
		if !ok {
			ctx.Fatalf("--dump needs a quotient filter snapshot, got %T", f)
		}
		fmt.Println()
		fmt.Print(qf.String())
	}
}
