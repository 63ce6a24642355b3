package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	LoginWithOtp(ctx context.Context) error
	Onboard(ctx context.Context) error
	Resume(ctx context.Context) error
	Whoami(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from r until EOF or "exit" and dispatches them to a.
//
//	Signed out:
//	  - login    sign in with email, then password or emailed code
//	  - otp      sign in with an emailed code even if a password is set
//	  - resume   continue an interrupted profile setup
//	Signed in:
//	  - onboard  fill in the profile
//	  - whoami   show the current session
//	  - logout   forget the session
//	Always: help, exit | quit
//
// Handler errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cb %s> ", statusFn()))
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: onboard, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, otp, resume, exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "otp":
			cmdErr = a.LoginWithOtp(ctx)

		case "onboard":
			cmdErr = a.Onboard(ctx)

		case "resume":
			cmdErr = a.Resume(ctx)

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
