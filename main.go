package main

import "github.com/brogergvhs/cubarid/cmd"

func main() {
	cmd.Execute()
}
