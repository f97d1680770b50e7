// Command sheetdb converts spreadsheet workbooks into SQLite databases and
// back.
package main

import (
	"os"

	"github.com/nao1215/sheetdb/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
