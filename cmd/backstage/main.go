// Command backstage serves and edits the admin tables of a live-streaming
// platform.
package main

import (
	"os"

	"github.com/mesh-intelligence/backstage/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
