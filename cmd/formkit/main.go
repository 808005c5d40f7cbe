// Command formkit manages the registration document (post types, taxonomies
// and meta boxes) and exposes the data helpers used by form templates.
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newApp(os.Stdout, os.Stderr).rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "formkit:", err)
		os.Exit(1)
	}
}
