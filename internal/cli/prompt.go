package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForImage prompts the user interactively for the portrait to retouch.
func PromptForImage() string {
	return promptLine(os.Stdin, os.Stdout, "Portrait image path: ")
}

// promptLine writes label to w and returns the trimmed line read from r.
func promptLine(r io.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, label)

	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read input")
		return ""
	}
	return strings.TrimSpace(input)
}
