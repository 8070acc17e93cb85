package main

import "github.com/nmvu/pagerisk/cmd"

func main() {
	cmd.Execute()
}
