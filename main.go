package main

import "github.com/notargets/gosphere/cmd"

func main() {
	cmd.Execute()
}
