package main

import "github.com/hikari-games/foxden-server/internal/cli"

func main() {
	cli.Execute()
}
