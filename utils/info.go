package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/bsoldiers/vtview/api"
	"github.com/bsoldiers/vtview/vtf"
)

// RunInfo writes the header diagnostics of a .vtf file to w.
func RunInfo(inPath string, w io.Writer) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	text, err := api.Info(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}
	_, err = io.WriteString(w, text)
	return err
}

// RunSniff prints "vtf" or "generic" for a file.
func RunSniff(inPath string, w io.Writer) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, vtf.Sniff(inPath, data))
	return err
}
