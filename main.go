package main

import "github.com/jmehdipour/wasend/cmd"

func main() {
	cmd.Execute()
}
