package main

import "github.com/matrun/matrun/cmd"

func main() {
	cmd.Execute()
}
