package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything other than y or yes (case-insensitive) is a no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		log.Warn().Err(err).Msg("Failed to read input, treating as no")
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	return false
}
