// Command shelfctl inspects a product catalog offline: the same index,
// pager and summary the feed service serves, printed to the terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
