// One-off: go run scripts/genhash.go <password>
// Prints a bcrypt hash suitable for seeding the users table.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := "changeme"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Print(string(h))
}
