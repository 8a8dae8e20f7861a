// Command surf builds succinct range filters from key files and runs
// point, successor and range queries against them.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/nobekanai/surf"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("surf", flag.ContinueOnError)

	var (
		buildPath  = flags.String("build", "", "build a filter from a newline-separated key file")
		filterPath = flags.String("filter", "", "load a previously saved filter")
		outPath    = flags.StringP("out", "o", "", "save the filter to this path after building")
		configPath = flags.String("config", "", "read build options from a JSON/JWCC file")

		lookupKey    = flags.String("lookup", "", "point-lookup a key")
		successorKey = flags.String("successor", "", "look up a key or its successor")
		rangeFrom    = flags.String("from", "", "lower bound of a range query (inclusive)")
		rangeTo      = flags.String("to", "", "upper bound of a range query (inclusive)")
		count        = flags.Bool("count", false, "count keys in the range instead of testing intersection")
		list         = flags.Bool("list", false, "enumerate all encoded keys in order")
	)

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if (*buildPath == "") == (*filterPath == "") {
		fmt.Fprintln(os.Stderr, "error: exactly one of --build and --filter is required")
		return 2
	}

	filter, code := obtainFilter(*buildPath, *filterPath, *configPath, *outPath)
	if code != 0 {
		return code
	}

	switch {
	case *lookupKey != "":
		found, err := filter.Lookup(surf.Key(*lookupKey))
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		if found {
			fmt.Println("found")
		} else {
			fmt.Println("absent")
		}

	case *successorKey != "":
		key, err := filter.Successor(surf.Key(*successorKey))
		if errors.Is(err, surf.ErrEndOfTrie) {
			fmt.Println("end of trie")
			return 0
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		fmt.Printf("%q\n", key)

	case *rangeFrom != "" || *rangeTo != "":
		if *rangeFrom == "" || *rangeTo == "" {
			fmt.Fprintln(os.Stderr, "error: range queries need both --from and --to")
			return 2
		}
		if *count {
			n, err := filter.RangeCount(surf.Key(*rangeFrom), surf.Key(*rangeTo))
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				return 1
			}
			fmt.Println(n)
		} else {
			ok, err := filter.RangeIntersects(surf.Key(*rangeFrom), surf.Key(*rangeTo))
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				return 1
			}
			fmt.Println(ok)
		}

	case *list:
		cursor := filter.Cursor()
		for {
			key, err := cursor.NextKey()
			if errors.Is(err, surf.ErrEndOfTrie) {
				break
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				return 1
			}
			fmt.Printf("%q\n", key)
		}

	default:
		fmt.Printf("filter: %d keys, %d nodes\n", filter.Size(), filter.NumNodes())
	}

	return 0
}

func obtainFilter(buildPath, filterPath, configPath, outPath string) (*surf.Filter, int) {
	if filterPath != "" {
		filter, err := surf.Load(filterPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return nil, 1
		}
		return filter, 0
	}

	opts := surf.DefaultOptions()
	if configPath != "" {
		var err error
		opts, err = surf.LoadOptions(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return nil, 1
		}
	}

	keys, err := readKeys(buildPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return nil, 1
	}

	filter, err := surf.Build(keys, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return nil, 1
	}

	if outPath != "" {
		if err := filter.Save(outPath); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return nil, 1
		}
	}

	return filter, 0
}

func readKeys(path string) ([]surf.Key, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening key file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var keys []surf.Key
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		keys = append(keys, append(surf.Key(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	return keys, nil
}
