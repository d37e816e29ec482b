package main

import "github.com/jfmyers9/lastkit/cmd"

func main() {
	cmd.Execute()
}
