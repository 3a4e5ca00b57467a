package main

import "github.com/descent-db/descent/cmd"

func main() {
	cmd.Execute()
}
