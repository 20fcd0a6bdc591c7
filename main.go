package main

import "github.com/killallgit/ada/cmd"

func main() {
	cmd.Execute()
}
