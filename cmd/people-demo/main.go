// people-demo builds three people in memory and exercises greeting,
// formatting, adult filtering and the simulated email send, printing to
// stdout.
//
//	go run ./cmd/people-demo
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aanand-mishra/people-api/internal/types"
)

func main() {
	run(os.Stdout)
}

func run(out io.Writer) {
	alice := types.NewPerson("Alice", 30).WithEmail("alice@example.com")
	bob := types.NewPerson("Bob", 17)
	charlie := types.NewPerson("Charlie", 25)

	fmt.Fprintln(out, alice.Greet(bob))
	fmt.Fprintf(out, "Alice: %s\n", alice)

	people := []types.Person{alice, bob, charlie}
	adults := types.FindAdults(people)
	fmt.Fprintf(out, "Adults: %s\n", strings.Join(types.Names(adults), ", "))

	alice.SendEmail(out, "Hello!")
	bob.SendEmail(out, "This won't work")
}
