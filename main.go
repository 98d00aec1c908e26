package main

import "github.com/keithwoj/RBF/cmd"

func main() {
	cmd.Execute()
}
