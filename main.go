package main

import "github.com/scolaris/school-management/cmd"

func main() {
	cmd.Execute()
}
