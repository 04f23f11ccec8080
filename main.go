package main

import "github.com/Timothykessler87/hardcover-sync-calibre-plugin/cmd"

func main() {
	cmd.Execute()
}
