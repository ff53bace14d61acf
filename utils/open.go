package utils

import (
	"errors"

	"github.com/ncruces/zenity"
)

var (
	pickFile = func() (string, error) {
		return zenity.SelectFile(
			zenity.Title("Open texture"),
			zenity.FileFilter{Name: "Textures", Patterns: []string{"*.vtf", "*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.tif", "*.tiff", "*.webp"}, CaseFold: true},
		)
	}
	showError = func(msg string) error {
		return zenity.Error(msg, zenity.Title("vtview"), zenity.ErrorIcon)
	}
)

// RunOpen converts inPath to PNG. With an empty inPath a file dialog
// picks the input and failures are also shown in an error dialog.
// Cancelling the dialog is not an error. A dialog that fails to show is
// reported together with the conversion error.
func RunOpen(inPath, outPath string) error {
	if inPath != "" {
		return RunVTF2PNG(inPath, outPath)
	}
	picked, err := pickFile()
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := RunVTF2PNG(picked, outPath); err != nil {
		if dialogErr := showError(err.Error()); dialogErr != nil {
			return errors.Join(err, dialogErr)
		}
		return err
	}
	return nil
}
