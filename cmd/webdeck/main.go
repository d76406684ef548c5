// Command webdeck runs the shell's content resolution headlessly, for
// diagnosing what the desktop window would show.
package main

import (
	"os"

	"github.com/revden/webdeck/internal/logging"
)

func main() {
	err := rootCmd.Execute()
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
