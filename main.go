// main.go
package main

import (
	_ "time/tzdata"

	"restaurant-directory/cmd"
)

func main() {
	cmd.Execute()
}
