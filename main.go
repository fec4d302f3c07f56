package main

import "github.com/vibast-solutions/ms-go-zarinpal/cmd"

func main() {
	cmd.Execute()
}
