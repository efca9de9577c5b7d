// Command gridsync replays validated test-configuration records into the
// manufacturing portal's data grid through browser automation.
package main

import (
	"os"

	"github.com/austinchang/gridsync/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
