package main

import "github.com/sttmtools/sttmgen/cmd"

func main() {
	cmd.Execute()
}
