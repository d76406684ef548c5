package main

import (
	"context"
	"fmt"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Dialogs are the native dialogs the app uses. Cancelled dialogs return an
// empty path and a nil error.
type Dialogs interface {
	OpenFile(title, defaultDir string) (string, error)
	SaveFile(title, defaultDir string) (string, error)
	OpenDirectory(title, defaultDir string) (string, error)
	// ConfirmRestart implements update.Prompter.
	ConfirmRestart(version string) bool
}

var projectFileFilters = []wailsRuntime.FileFilter{
	{DisplayName: "Web documents (*.html;*.htm)", Pattern: "*.html;*.htm"},
	{DisplayName: "Text files (*.txt;*.md;*.json)", Pattern: "*.txt;*.md;*.json"},
	{DisplayName: "All files", Pattern: "*"},
}

// wailsDialogs shows dialogs through the Wails runtime.
type wailsDialogs struct {
	ctx func() context.Context
}

func (d wailsDialogs) OpenFile(title, defaultDir string) (string, error) {
	return wailsRuntime.OpenFileDialog(d.ctx(), wailsRuntime.OpenDialogOptions{
		Title:            title,
		DefaultDirectory: defaultDir,
		Filters:          projectFileFilters,
	})
}

func (d wailsDialogs) SaveFile(title, defaultDir string) (string, error) {
	return wailsRuntime.SaveFileDialog(d.ctx(), wailsRuntime.SaveDialogOptions{
		Title:                title,
		DefaultDirectory:     defaultDir,
		CanCreateDirectories: true,
		Filters:              projectFileFilters,
	})
}

func (d wailsDialogs) OpenDirectory(title, defaultDir string) (string, error) {
	return wailsRuntime.OpenDirectoryDialog(d.ctx(), wailsRuntime.OpenDialogOptions{
		Title:                title,
		DefaultDirectory:     defaultDir,
		CanCreateDirectories: false,
		ShowHiddenFiles:      false,
	})
}

func (d wailsDialogs) ConfirmRestart(version string) bool {
	choice, err := wailsRuntime.MessageDialog(d.ctx(), wailsRuntime.MessageDialogOptions{
		Type:          wailsRuntime.QuestionDialog,
		Title:         "Update ready",
		Message:       fmt.Sprintf("Version %s has been downloaded. Restart now to install it?", version),
		Buttons:       []string{"Restart", "Later"},
		DefaultButton: "Restart",
		CancelButton:  "Later",
	})
	if err != nil {
		log.Warnf("restart prompt failed: %v", err)
		return false
	}
	// Windows ignores custom buttons and reports "Yes".
	return choice == "Restart" || choice == "Yes"
}

// quitInstaller quits the app so the platform installer can replace it.
type quitInstaller struct {
	ctx func() context.Context
}

func (q quitInstaller) QuitAndInstall() error {
	ctx := q.ctx()
	if ctx == nil {
		return fmt.Errorf("application not started")
	}
	wailsRuntime.Quit(ctx)
	return nil
}
