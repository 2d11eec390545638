package main

import "qcl/internal/app"

func main() {
	app.Main()
}
