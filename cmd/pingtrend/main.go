package main

import "pingtrend/internal/cli"

func main() {
	cli.Execute()
}
