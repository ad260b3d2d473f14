package main

import "github.com/rpggio/sitetrack/internal/cli"

func main() {
	cli.Execute()
}
