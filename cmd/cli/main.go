package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/peterh/liner"

	"amq/internal/common"
	"amq/internal/registry"
)

const usage = "commands: insert <item>... | contains <item> | remove <item> | seed <x> | probe <n> | " +
	"stats | dump | resize <q> | clear | save <name> | load <file> | inspect <file> | history [n] | exit"

type cli struct {
	Kind string  `help:"Filter kind." enum:"cuckoo,scalable-cuckoo,quotient,bloom" default:"cuckoo"`
	N    int     `help:"Expected number of items." default:"10000"`
	FPP  float64 `name:"fpp" help:"Target false positive probability." default:"0.01"`
	Load string  `help:"Snapshot file to open instead of creating a filter." placeholder:"FILE"`
}

func main() {
	var params cli
	ctx := kong.Parse(&params, kong.Description("Interactive shell over one approximate membership filter."))

	common.LoggingEnabled = true

	kind, err := common.ParseKind(params.Kind)
	ctx.FatalIfErrorf(err)
	s, err := newSession(kind, params.N, params.FPP)
	ctx.FatalIfErrorf(err, "failed to create filter")
	if params.Load != "" {
		ctx.FatalIfErrorf(s.load(params.Load), "failed to load %s", params.Load)
	}

	fmt.Println("amq - approximate membership filters")
	fmt.Printf("config: kind=%s n=%d fpp=%v\n", s.kind, s.capacity, s.fpp)
	fmt.Println(usage)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history, err := openHistory(line)
	if err != nil {
		fmt.Printf("warning: history disabled: %v\n", err)
	} else {
		defer func() {
			if err := history.save(line); err != nil {
				fmt.Printf("warning: failed to save history: %v\n", err)
			}
		}()
	}

	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "input error: %v\n", err)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if history != nil {
			history.add(line, input)
		} else {
			line.AppendHistory(input)
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "insert":
			if len(args) == 0 {
				fmt.Println("usage: insert <item>...")
				continue
			}
			s.insert(args)
		case "contains":
			if len(args) != 1 {
				fmt.Println("usage: contains <item>")
				continue
			}
			if s.f.Contains([]byte(args[0])) {
				fmt.Println("maybe")
			} else {
				fmt.Println("no")
			}
		case "remove":
			if len(args) != 1 {
				fmt.Println("usage: remove <item>")
				continue
			}
			s.remove(args[0])
		case "seed":
			x, ok := positiveArg(args, "seed <x>")
			if !ok {
				continue
			}
			s.seed(x)
		case "probe":
			n, ok := positiveArg(args, "probe <n>")
			if !ok {
				continue
			}
			s.probe(n)
		case "stats":
			registry.Print(os.Stdout, registry.Describe(s.f))
		case "dump":
			s.dump()
		case "resize":
			q, ok := positiveArg(args, "resize <quotient bits>")
			if !ok {
				continue
			}
			s.resize(uint(q))
		case "clear":
			if err := s.reset(); err != nil {
				fmt.Printf("clear error: %v\n", err)
				continue
			}
			fmt.Println("ok")
		case "save":
			if len(args) != 1 {
				fmt.Println("usage: save <name>")
				continue
			}
			path, err := registry.Save(args[0], s.f)
			if err != nil {
				fmt.Printf("save error: %v\n", err)
				continue
			}
			fmt.Printf("saved %s\n", path)
		case "load":
			if len(args) != 1 {
				fmt.Println("usage: load <file.cf|file.scf|file.qf|file.bf>")
				continue
			}
			if err := s.load(args[0]); err != nil {
				fmt.Printf("load error: %v\n", err)
				continue
			}
			fmt.Printf("loaded %s filter with %d items\n", s.kind, s.f.Len())
		case "inspect":
			if len(args) != 1 {
				fmt.Println("usage: inspect <file.cf|file.scf|file.qf|file.bf>")
				continue
			}
			inspectFile(args[0])
		case "history":
			if history == nil {
				fmt.Println("history is disabled")
				continue
			}
			n := 0
			if len(args) == 1 {
				n, _ = strconv.Atoi(args[0])
			}
			for i, c := range history.last(n) {
				fmt.Printf("%4d  %s\n", i+1, c)
			}
		case "help":
			fmt.Println(usage)
		case "exit", "quit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

func positiveArg(args []string, syntax string) (int, bool) {
	if len(args) != 1 {
		fmt.Printf("usage: %s\n", syntax)
		return 0, false
	}
	x, err := strconv.Atoi(args[0])
	if err != nil || x < 1 {
		fmt.Printf("%s: argument must be a positive integer\n", strings.Fields(syntax)[0])
		return 0, false
	}
	return x, true
}
