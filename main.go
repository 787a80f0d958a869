package main

import "github.com/MyCarrier-DevOps/go-gitfleet/cmd"

func main() {
	cmd.Execute()
}
