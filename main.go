package main

import "order-importer/cmd"

func main() {
	cmd.Execute()
}
