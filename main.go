package main

import "github.com/kamal-hamza/grassfier/cmd"

func main() {
	cmd.Execute()
}
