package main

import "github/chapool/nft-minter/cmd"

func main() {
	cmd.Execute()
}
