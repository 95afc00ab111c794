package main

import "github.com/Mohsinsiddi/w3drop/cmd"

func main() {
	cmd.Execute()
}
