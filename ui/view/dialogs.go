package view

import (
	"path/filepath"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var imageFileTypes = []FileType{
	{TypeName: "Images", Extensions: []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}},
	{TypeName: "All files", Extensions: []string{"*"}},
}

var maskFileTypes = []FileType{
	{TypeName: "PNG", Extensions: []string{".png"}},
	{TypeName: "BMP", Extensions: []string{".bmp"}},
	{TypeName: "TIFF", Extensions: []string{".tif", ".tiff"}},
}

// OpenImageDialog asks for an image file. It returns "" when cancelled.
func OpenImageDialog(initialDir string) string {
	opts := []Opt{Title("Select Image"), Filetypes(imageFileTypes), Multiple(false)}
	if initialDir != "" {
		opts = append(opts, Initialdir(initialDir))
	}
	files := GetOpenFile(opts...)
	if len(files) == 0 {
		return ""
	}
	return strings.TrimSpace(files[0])
}

// SaveMaskDialog asks for the mask destination. It returns "" when cancelled.
func SaveMaskDialog(initialDir, initialFile string) string {
	opts := []Opt{Title("Save Mask"), Filetypes(maskFileTypes), Defaultextension(".png"), Initialfile(initialFile)}
	if initialDir != "" {
		opts = append(opts, Initialdir(initialDir))
	}
	return strings.TrimSpace(GetSaveFile(opts...))
}

// ShowErrorDialog blocks on a modal error box.
func ShowErrorDialog(title, msg string) {
	MessageBox(Icon("error"), Title(title), Msg(msg), Type("ok"))
}

// DirOf returns the directory to remember for the next dialog.
func DirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
