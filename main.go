package main

import (
	"properly.homes/backend/cmd/app"
)

func main() {
	app.Run()
}
