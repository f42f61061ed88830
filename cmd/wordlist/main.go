// Package main encrypts a plaintext word list into the format the server
// embeds (assets/words.txt), or checks an existing encrypted list.
//
//	wordlist < plain.txt > assets/words.txt
//	wordlist -start 30 < next-cycle.txt >> assets/words.txt
//	wordlist -check < assets/words.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/robalobadob/reveal/assets"
	"github.com/robalobadob/reveal/internal/words"
)

func main() {
	var (
		start  int
		prefix string
		check  bool
	)
	flag.IntVar(&start, "start", 0, "puzzle index of the first word (keys are prefix+index)")
	flag.StringVar(&prefix, "prefix", words.DefaultKeyPrefix, "passphrase prefix")
	flag.BoolVar(&check, "check", false, "decode an encrypted list instead of encrypting")
	flag.Parse()

	run := encrypt
	if check {
		run = verify
	}
	if err := run(os.Stdin, os.Stdout, start, prefix); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// encrypt writes one entry per plaintext word, keyed by its puzzle index.
func encrypt(in io.Reader, out io.Writer, start int, prefix string) error {
	sc := bufio.NewScanner(in)
	idx := start
	for sc.Scan() {
		w := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if !isWord(w) {
			return fmt.Errorf("line for puzzle %d: %q is not a word", idx, w)
		}
		enc, err := words.Encode(w, prefix+strconv.Itoa(idx))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, enc); err != nil {
			return err
		}
		idx++
	}
	return sc.Err()
}

// verify resolves every entry of an encrypted list and prints the words.
func verify(in io.Reader, out io.Writer, start int, prefix string) error {
	entries, err := assets.ReadEntries(in)
	if err != nil {
		return err
	}
	for i, e := range entries {
		idx := start + i
		w, err := words.Decode(e, prefix+strconv.Itoa(idx))
		if err != nil {
			return fmt.Errorf("puzzle %d: %w", idx, err)
		}
		if !isWord(w) {
			return fmt.Errorf("puzzle %d: %w: plaintext is not a word", idx, words.ErrDecode)
		}
		fmt.Fprintf(out, "%d\t%s\n", idx, w)
	}
	return nil
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
