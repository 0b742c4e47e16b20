package main

import "github.com/karolswdev/workitron/cmd"

func main() {
	cmd.Execute()
}
