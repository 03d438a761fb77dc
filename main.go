// main.go

package main

import (
	"github.com/serentry/dbvault/cmd"
)

func main() {
	cmd.Execute()
}
