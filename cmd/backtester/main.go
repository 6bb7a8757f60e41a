package main

import "github.com/quantworks/backtester/internal/cli"

func main() {
	cli.Execute()
}
