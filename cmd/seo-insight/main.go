package main

import (
	"fmt"
	"os"

	"github.com/Bahjat/seo-insight/internal/cli"
	"github.com/Bahjat/seo-insight/internal/platform/errs"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch errs.KindOf(err) {
	case errs.InvalidInput:
		return 2
	case errs.Unreachable, errs.Timeout:
		return 3
	default:
		return 1
	}
}
