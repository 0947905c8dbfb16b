// mmwrtab - MMWR weekly table parser
//
// mmwrtab parses the CDC's weekly tab-delimited notifiable disease tables and
// queries values across many weeks.
package main

import (
	"os"

	"github.com/ccollicutt/mmwrtab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
