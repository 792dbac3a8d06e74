package main

import "github.com/ValentinKolb/sLock/cmd"

func main() {
	cmd.Execute()
}
