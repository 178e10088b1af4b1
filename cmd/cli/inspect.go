package main

import (
	"fmt"
	"os"

	"amq/internal/registry"
)

func inspectFile(path string) {
	fmt.Printf("Inspecting snapshot: %s\n", path)
	fmt.Println()

	f, err := registry.Load(path)
	if err != nil {
		fmt.Printf("failed to open snapshot: %v\n", err)
		return
	}
	registry.Print(os.Stdout, registry.Describe(f))
	fmt.Println()
}
