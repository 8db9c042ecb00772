package main

import "github.com/papapumpkin/cartographer/cmd"

func main() {
	cmd.Execute()
}
