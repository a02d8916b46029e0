package main

import (
	"github.com/MaykThewessen/highsmon/internal/cli"
)

func main() {
	cli.Execute()
}
