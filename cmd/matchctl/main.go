package main

import "github.com/lostfound/backend/internal/cli"

func main() {
	cli.Execute()
}
