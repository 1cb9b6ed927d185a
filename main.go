package main

import "github.com/mselser95/quote-proxy/cmd"

func main() {
	cmd.Execute()
}
