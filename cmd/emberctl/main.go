package main

import "github.com/emberos/emberctl/cmd/emberctl/cmd"

func main() {
	cmd.Execute()
}
