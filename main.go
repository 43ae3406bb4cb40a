package main

import "github.com/gaurav-prasanna/pagenote/cmd"

func main() {
	cmd.Execute()
}
