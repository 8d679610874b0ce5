package main

import "github.com/ValentinKolb/cqlbench/cmd"

func main() {
	cmd.Execute()
}
