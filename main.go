package main

import "github.com/karolswdev/careplan/cmd"

func main() {
	cmd.Execute()
}
