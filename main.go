package main

import "github.com/tradersecho/tradersecho/cmd"

func main() {
	cmd.Execute()
}
