package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"library-lending/library"
)

const menu = `
.....................................
1. Add Member.
2. Add Book.
3. Issue Book.
4. Return Book.
5. Save and Exit.
.....................................`

// runMenu drives the numbered menu until action 5 or end of input.
// Only action 5 saves; running out of input leaves the stored data untouched.
func runMenu(in io.Reader, out io.Writer, mgr *library.LibraryManager) error {
	sc := bufio.NewScanner(in)
	if isTerminal(in) {
		fmt.Fprintln(out, "Welcome to the Library Management System!")
	}

	for {
		fmt.Fprintln(out, menu)
		fmt.Fprint(out, "\nEnter Your choice: ")
		if !sc.Scan() {
			fmt.Fprintln(out, "\nInput closed. Exiting without saving.")
			return sc.Err()
		}

		switch strings.TrimSpace(sc.Text()) {
		case "1":
			handleAddMember(sc, out, mgr)
		case "2":
			handleAddItem(sc, out, mgr)
		case "3":
			handleIssue(sc, out, mgr)
		case "4":
			handleReturn(sc, out, mgr)
		case "5":
			if err := mgr.SaveData(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Data saved. Goodbye!")
			return nil
		default:
			fmt.Fprintln(out, "Unknown choice. Enter a number from 1 to 5.")
		}
	}
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func handleAddMember(sc *bufio.Scanner, out io.Writer, mgr *library.LibraryManager) {
	name, ok := prompt(sc, out, "Enter name: ")
	if !ok {
		return
	}
	id, ok := promptInt(sc, out, "Enter ID: ")
	if !ok {
		return
	}
	stream, ok := prompt(sc, out, "Enter stream: ")
	if !ok {
		return
	}
	report(out, mgr.AddMember(name, id, stream), "Member added successfully!")
}

func handleAddItem(sc *bufio.Scanner, out io.Writer, mgr *library.LibraryManager) {
	title, ok := prompt(sc, out, "Enter title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, out, "Enter author: ")
	if !ok {
		return
	}
	quantity, ok := promptInt(sc, out, "Enter quantity: ")
	if !ok {
		return
	}
	report(out, mgr.AddItem(title, author, int(quantity)), "Book added successfully!")
}

func handleIssue(sc *bufio.Scanner, out io.Writer, mgr *library.LibraryManager) {
	title, ok := prompt(sc, out, "Enter book title: ")
	if !ok {
		return
	}
	memberID, ok := promptInt(sc, out, "Enter member ID: ")
	if !ok {
		return
	}
	_, err := mgr.Issue(title, memberID)
	report(out, err, "Book issued successfully!")
}

func handleReturn(sc *bufio.Scanner, out io.Writer, mgr *library.LibraryManager) {
	title, ok := prompt(sc, out, "Enter book title: ")
	if !ok {
		return
	}
	memberID, ok := promptInt(sc, out, "Enter member ID: ")
	if !ok {
		return
	}
	rec, err := mgr.Return(title, memberID)
	if err != nil {
		report(out, err, "")
		return
	}
	fmt.Fprintln(out, returnMessage(rec.Fine))
}

func prompt(sc *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func promptInt(sc *bufio.Scanner, out io.Writer, label string) (int64, bool) {
	s, ok := prompt(sc, out, label)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid number: %s\n", s)
		return 0, false
	}
	return n, true
}

func report(out io.Writer, err error, success string) {
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(out, success)
}

func returnMessage(fine int) string {
	if fine > 0 {
		return fmt.Sprintf("Book returned successfully! Fine due: %d", fine)
	}
	return "Book returned successfully!"
}
