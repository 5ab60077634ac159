package main

import "github.com/issuer-networks/wallet-callback/internal/cli"

func main() {
	cli.Execute()
}
