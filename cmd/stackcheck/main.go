package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stackcheck/stackcheck/internal/cli"
)

func main() {
	root := cli.NewRootCmd()

	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrVerificationFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
