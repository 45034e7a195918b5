package main

import "github.com/clrdiag/clrdiag/cmd"

func main() {
	cmd.Execute()
}
