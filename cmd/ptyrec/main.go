package main

import (
	"fmt"
	"os"

	"github.com/ptyrec/ptyrec/internal/cmd"
)

func main() {
	code, err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	os.Exit(code)
}
