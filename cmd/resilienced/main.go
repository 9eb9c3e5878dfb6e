package main

import (
	"github.com/TAKIS21345/techsteps-sub005/internal/cli"
)

func main() {
	cli.Execute()
}
