package main

import "github.com/jfmyers9/omxctl/cmd"

func main() {
	cmd.Execute()
}
