package main

import "github.com/Robaed/changachanga-dev/cmd"

func main() {
	cmd.Execute()
}
